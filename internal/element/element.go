package element

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindText      Kind = "text"
	KindImage     Kind = "image"
)

// Kinds lists every element kind in toolbar order.
var Kinds = []Kind{KindRectangle, KindCircle, KindText, KindImage}

var ErrUnknownKind = errors.New("unknown element type")

const (
	DefaultSize     = 100.0
	DefaultRadius   = 50.0
	DefaultFontSize = 20.0
	DefaultColor    = "#000000"

	// RenderFontSize is used when a text element carries no usable font size.
	RenderFontSize = 16.0
)

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type Point struct {
	X, Y float64
}

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Shape is the kind-specific part of an Element. The set of implementations
// is closed: Rectangle, Circle, Text and Image.
type Shape interface {
	Kind() Kind
	isShape()
}

type Rectangle struct {
	Width  float64
	Height float64
	Color  string
}

type Circle struct {
	Radius float64
	Color  string
}

// Text is drawn with its anchor at the baseline origin. Width and Height
// describe the text box used for hit-testing, outlining and resizing.
type Text struct {
	Text     string
	FontSize float64
	Color    string
	Width    float64
	Height   float64
}

type Image struct {
	Src    string
	Width  float64
	Height float64
}

func (Rectangle) Kind() Kind { return KindRectangle }
func (Circle) Kind() Kind    { return KindCircle }
func (Text) Kind() Kind      { return KindText }
func (Image) Kind() Kind     { return KindImage }

func (Rectangle) isShape() {}
func (Circle) isShape()    {}
func (Text) isShape()      {}
func (Image) isShape()     {}

// Element is one drawing primitive placed at anchor (X, Y). Shapes are held
// by value so copying an Element never shares mutable state.
type Element struct {
	X     float64
	Y     float64
	Shape Shape
}

func NewRectangle(x, y, width, height float64, color string) Element {
	return Element{X: x, Y: y, Shape: Rectangle{Width: width, Height: height, Color: color}}
}

func NewCircle(x, y, radius float64, color string) Element {
	return Element{X: x, Y: y, Shape: Circle{Radius: radius, Color: color}}
}

// NewText sizes the text box from the string and font size.
func NewText(x, y float64, text string, fontSize float64, color string) Element {
	w, h := EstimateTextBox(text, fontSize)
	return Element{X: x, Y: y, Shape: Text{Text: text, FontSize: fontSize, Color: color, Width: w, Height: h}}
}

func NewImage(x, y, width, height float64, src string) Element {
	return Element{X: x, Y: y, Shape: Image{Src: src, Width: width, Height: height}}
}

// EstimateTextBox approximates the extent of a single line of proportional
// text without loading a font.
func EstimateTextBox(text string, fontSize float64) (float64, float64) {
	if fontSize <= 0 {
		fontSize = RenderFontSize
	}
	n := utf8.RuneCountInString(text)
	if n == 0 {
		n = 1
	}
	return float64(n) * fontSize * 0.6, fontSize
}

func (e Element) Kind() Kind {
	if e.Shape == nil {
		return ""
	}
	return e.Shape.Kind()
}

func (e Element) Anchor() Point {
	return Point{X: e.X, Y: e.Y}
}

// Color returns the fill color, or "" for kinds without one.
func (e Element) Color() string {
	switch s := e.Shape.(type) {
	case Rectangle:
		return s.Color
	case Circle:
		return s.Color
	case Text:
		return s.Color
	}
	return ""
}

// Bounds reports the axis-aligned box of rectangles, text and images.
// Circles have no box.
func (e Element) Bounds() (Rect, bool) {
	switch s := e.Shape.(type) {
	case Rectangle:
		return Rect{X: e.X, Y: e.Y, W: s.Width, H: s.Height}, true
	case Text:
		return Rect{X: e.X, Y: e.Y, W: s.Width, H: s.Height}, true
	case Image:
		return Rect{X: e.X, Y: e.Y, W: s.Width, H: s.Height}, true
	}
	return Rect{}, false
}

func (e Element) Contains(p Point) bool {
	if c, ok := e.Shape.(Circle); ok {
		dx, dy := p.X-e.X, p.Y-e.Y
		return dx*dx+dy*dy <= c.Radius*c.Radius
	}
	r, ok := e.Bounds()
	return ok && r.Contains(p)
}

func (e Element) MoveTo(x, y float64) Element {
	e.X, e.Y = x, y
	return e
}

// WithBox places a box element at r. Circles are returned unchanged.
func (e Element) WithBox(r Rect) Element {
	switch s := e.Shape.(type) {
	case Rectangle:
		s.Width, s.Height = r.W, r.H
		return Element{X: r.X, Y: r.Y, Shape: s}
	case Text:
		s.Width, s.Height = r.W, r.H
		return Element{X: r.X, Y: r.Y, Shape: s}
	case Image:
		s.Width, s.Height = r.W, r.H
		return Element{X: r.X, Y: r.Y, Shape: s}
	}
	return e
}

// WithKind converts e to kind k. Fields the target kind does not have are
// dropped; shared ones carry over and missing ones take defaults.
func (e Element) WithKind(k Kind) (Element, error) {
	if e.Kind() == k {
		return e, nil
	}
	color := e.Color()
	if color == "" {
		color = DefaultColor
	}
	w, h := DefaultSize, DefaultSize
	if r, ok := e.Bounds(); ok {
		w, h = r.W, r.H
	}

	switch k {
	case KindRectangle:
		return NewRectangle(e.X, e.Y, w, h, color), nil
	case KindCircle:
		return NewCircle(e.X, e.Y, DefaultRadius, color), nil
	case KindText:
		el := NewText(e.X, e.Y, "", DefaultFontSize, color)
		if _, ok := e.Bounds(); ok {
			el = el.WithBox(Rect{X: e.X, Y: e.Y, W: w, H: h})
		}
		return el, nil
	case KindImage:
		return NewImage(e.X, e.Y, w, h, ""), nil
	}
	return e, fmt.Errorf("%w: %q", ErrUnknownKind, k)
}

// Clone returns a copy of list that shares nothing with it.
func Clone(list []Element) []Element {
	if list == nil {
		return nil
	}
	out := make([]Element, len(list))
	copy(out, list)
	return out
}

// Replace returns a new list with el at index i. The input is not modified.
func Replace(list []Element, i int, el Element) []Element {
	out := Clone(list)
	if i >= 0 && i < len(out) {
		out[i] = el
	}
	return out
}

// Remove returns a new list without index i.
func Remove(list []Element, i int) []Element {
	if i < 0 || i >= len(list) {
		return Clone(list)
	}
	out := make([]Element, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// ImageSources lists the src of every image element in paint order.
func ImageSources(list []Element) []string {
	var srcs []string
	for _, el := range list {
		if im, ok := el.Shape.(Image); ok {
			srcs = append(srcs, im.Src)
		}
	}
	return srcs
}

// WithColor recolors rectangles, circles and text. Images are returned
// unchanged.
func (e Element) WithColor(color string) Element {
	switch s := e.Shape.(type) {
	case Rectangle:
		s.Color = color
		e.Shape = s
	case Circle:
		s.Color = color
		e.Shape = s
	case Text:
		s.Color = color
		e.Shape = s
	}
	return e
}
