package surface

import (
	"math"

	"easel/internal/element"
)

type Handle int

const (
	NoHandle Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
)

func (h Handle) String() string {
	switch h {
	case HandleTopLeft:
		return "top-left"
	case HandleTopRight:
		return "top-right"
	case HandleBottomLeft:
		return "bottom-left"
	case HandleBottomRight:
		return "bottom-right"
	}
	return "none"
}

type corner struct {
	handle Handle
	at     element.Point
}

func corners(r element.Rect) []corner {
	return []corner{
		{HandleTopLeft, element.Point{X: r.X, Y: r.Y}},
		{HandleTopRight, element.Point{X: r.X + r.W, Y: r.Y}},
		{HandleBottomLeft, element.Point{X: r.X, Y: r.Y + r.H}},
		{HandleBottomRight, element.Point{X: r.X + r.W, Y: r.Y + r.H}},
	}
}

// handlePoints returns the four corners followed by the four edge midpoints.
func handlePoints(r element.Rect) []element.Point {
	pts := make([]element.Point, 0, 8)
	for _, c := range corners(r) {
		pts = append(pts, c.at)
	}
	cx, cy := r.X+r.W/2, r.Y+r.H/2
	return append(pts,
		element.Point{X: cx, Y: r.Y},
		element.Point{X: r.X + r.W, Y: cy},
		element.Point{X: cx, Y: r.Y + r.H},
		element.Point{X: r.X, Y: cy},
	)
}

// handleAt tests p against the corner handles of el. Edge midpoints are
// drawn but never resize.
func handleAt(el element.Element, p element.Point) Handle {
	r, ok := el.Bounds()
	if !ok {
		return NoHandle
	}
	for _, c := range corners(r) {
		if math.Abs(p.X-c.at.X) <= HandleSize && math.Abs(p.Y-c.at.Y) <= HandleSize {
			return c.handle
		}
	}
	return NoHandle
}

// ResizeBox applies a corner drag to r. The opposite corner stays put and
// each dimension is floored at MinSize.
func ResizeBox(r element.Rect, h Handle, p element.Point) element.Rect {
	switch h {
	case HandleBottomRight:
		r.W = p.X - r.X
		r.H = p.Y - r.Y
	case HandleTopLeft:
		r.W += r.X - p.X
		r.H += r.Y - p.Y
		r.X, r.Y = p.X, p.Y
	case HandleTopRight:
		r.W = p.X - r.X
		r.H += r.Y - p.Y
		r.Y = p.Y
	case HandleBottomLeft:
		r.W += r.X - p.X
		r.H = p.Y - r.Y
		r.X = p.X
	default:
		return r
	}
	r.W = math.Max(r.W, MinSize)
	r.H = math.Max(r.H, MinSize)
	return r
}

// Guidelines reports whether r's center is strictly within GuideThreshold of
// the vertical and horizontal center axes of a width x height surface.
func Guidelines(r element.Rect, width, height int) (vertical, horizontal bool) {
	c := r.Center()
	vertical = math.Abs(c.X-float64(width)/2) < GuideThreshold
	horizontal = math.Abs(c.Y-float64(height)/2) < GuideThreshold
	return vertical, horizontal
}
