package element

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number accepts both JSON numbers and numeric strings; form inputs in the
// browser client post their values as strings.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

type wireElement struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
}

type wireProps struct {
	X        Number `json:"x"`
	Y        Number `json:"y"`
	Width    Number `json:"width"`
	Height   Number `json:"height"`
	Radius   Number `json:"radius"`
	Text     string `json:"text"`
	FontSize Number `json:"fontSize"`
	Color    string `json:"color"`
	Src      string `json:"src"`
}

type rectangleProps struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color,omitempty"`
}

type circleProps struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color,omitempty"`
}

type textProps struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Color    string  `json:"color,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

type imageProps struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Src    string  `json:"src"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (e Element) MarshalJSON() ([]byte, error) {
	var props any
	switch s := e.Shape.(type) {
	case Rectangle:
		props = rectangleProps{X: e.X, Y: e.Y, Width: s.Width, Height: s.Height, Color: s.Color}
	case Circle:
		props = circleProps{X: e.X, Y: e.Y, Radius: s.Radius, Color: s.Color}
	case Text:
		props = textProps{X: e.X, Y: e.Y, Text: s.Text, FontSize: s.FontSize, Color: s.Color, Width: s.Width, Height: s.Height}
	case Image:
		props = imageProps{X: e.X, Y: e.Y, Src: s.Src, Width: s.Width, Height: s.Height}
	default:
		return nil, fmt.Errorf("marshal element: %w", ErrUnknownKind)
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireElement{Type: string(e.Kind()), Properties: raw})
}

// UnmarshalJSON decodes the {"type", "properties"} shape. Properties that do
// not belong to the type are dropped.
func (e *Element) UnmarshalJSON(b []byte) error {
	var w wireElement
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	kind, err := ParseKind(w.Type)
	if err != nil {
		return err
	}
	var p wireProps
	if len(w.Properties) > 0 {
		if err := json.Unmarshal(w.Properties, &p); err != nil {
			return fmt.Errorf("%s properties: %w", kind, err)
		}
	}

	x, y := float64(p.X), float64(p.Y)
	switch kind {
	case KindRectangle:
		*e = NewRectangle(x, y, float64(p.Width), float64(p.Height), p.Color)
	case KindCircle:
		*e = NewCircle(x, y, float64(p.Radius), p.Color)
	case KindText:
		el := NewText(x, y, p.Text, float64(p.FontSize), p.Color)
		if p.Width > 0 && p.Height > 0 {
			el = el.WithBox(Rect{X: x, Y: y, W: float64(p.Width), H: float64(p.Height)})
		}
		*e = el
	case KindImage:
		*e = NewImage(x, y, float64(p.Width), float64(p.Height), p.Src)
	}
	return nil
}
