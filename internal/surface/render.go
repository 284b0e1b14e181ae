package surface

import (
	"image"
	"math"

	"easel/internal/element"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Render repaints the whole surface: background, every element in list
// order, then the selection affordances.
func (s *Surface) Render() {
	dc := s.dc
	if dc == nil {
		return
	}

	dc.SetColor(backgroundColor)
	dc.Clear()

	els := s.store.Elements()
	for i, el := range els {
		s.paint(dc, i, el)
	}

	i := s.selected(els)
	if i == NoSelection {
		return
	}
	if r, ok := els[i].Bounds(); ok {
		s.drawSelection(dc, r)
	}
}

func (s *Surface) paint(dc *gg.Context, index int, el element.Element) {
	switch sh := el.Shape.(type) {
	case element.Rectangle:
		dc.SetColor(element.ParseColor(sh.Color))
		dc.DrawRectangle(el.X, el.Y, sh.Width, sh.Height)
		dc.Fill()
	case element.Circle:
		if sh.Radius <= 0 {
			return
		}
		dc.SetColor(element.ParseColor(sh.Color))
		dc.DrawCircle(el.X, el.Y, sh.Radius)
		dc.Fill()
	case element.Text:
		if sh.Text == "" {
			return
		}
		dc.SetFontFace(s.fonts.face(sh.FontSize))
		dc.SetColor(element.ParseColor(sh.Color))
		dc.DrawString(sh.Text, el.X, el.Y)
	case element.Image:
		s.paintImage(dc, index, el, sh)
	}
}

// paintImage draws a cached image or starts loading it. It never waits.
func (s *Surface) paintImage(dc *gg.Context, index int, el element.Element, img element.Image) {
	if !(img.Width > 0) || !(img.Height > 0) {
		return
	}
	entry, ok := s.images.get(img.Src)
	if !ok {
		s.requestImage(index, img.Src)
		return
	}
	if entry.state != imageReady {
		return
	}
	dst, ok := dc.Image().(xdraw.Image)
	if !ok {
		return
	}
	drawScaled(dst, entry.img, element.Rect{X: el.X, Y: el.Y, W: img.Width, H: img.Height})
}

// drawScaled scales src into box, touching only the part of box that lies
// inside dst. Box size is unbounded, so all clipping happens in float space.
func drawScaled(dst xdraw.Image, src image.Image, box element.Rect) {
	db := dst.Bounds()
	vx0 := math.Max(box.X, float64(db.Min.X))
	vy0 := math.Max(box.Y, float64(db.Min.Y))
	vx1 := math.Min(box.X+box.W, float64(db.Max.X))
	vy1 := math.Min(box.Y+box.H, float64(db.Max.Y))
	if !(vx1 > vx0) || !(vy1 > vy0) {
		return
	}
	visible := image.Rect(int(math.Floor(vx0)), int(math.Floor(vy0)), int(math.Ceil(vx1)), int(math.Ceil(vy1)))

	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw <= 0 || sh <= 0 {
		return
	}
	sr := image.Rect(
		sb.Min.X+int(math.Floor((vx0-box.X)/box.W*sw)),
		sb.Min.Y+int(math.Floor((vy0-box.Y)/box.H*sh)),
		sb.Min.X+int(math.Ceil((vx1-box.X)/box.W*sw)),
		sb.Min.Y+int(math.Ceil((vy1-box.Y)/box.H*sh)),
	).Intersect(sb)
	if sr.Empty() {
		// a visible slice thinner than one source pixel
		x := min(max(sb.Min.X+int((vx0-box.X)/box.W*sw), sb.Min.X), sb.Max.X-1)
		y := min(max(sb.Min.Y+int((vy0-box.Y)/box.H*sh), sb.Min.Y), sb.Max.Y-1)
		sr = image.Rect(x, y, x+1, y+1)
	}
	xdraw.ApproxBiLinear.Scale(dst, visible, src, sr, xdraw.Over, nil)
}

func (s *Surface) drawSelection(dc *gg.Context, r element.Rect) {
	dc.SetLineWidth(1)
	dc.SetColor(outlineColor)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Stroke()

	for _, p := range handlePoints(r) {
		dc.DrawRectangle(p.X-HandleSize/2, p.Y-HandleSize/2, HandleSize, HandleSize)
		dc.SetColor(handleFill)
		dc.FillPreserve()
		dc.SetColor(outlineColor)
		dc.Stroke()
	}

	vertical, horizontal := Guidelines(r, s.width, s.height)
	if !vertical && !horizontal {
		return
	}
	w, h := float64(s.width), float64(s.height)
	dc.SetColor(guideColor)
	dc.SetDash(4, 4)
	if vertical {
		dc.DrawLine(w/2, 0, w/2, h)
		dc.Stroke()
	}
	if horizontal {
		dc.DrawLine(0, h/2, w, h/2)
		dc.Stroke()
	}
	dc.SetDash()
}
