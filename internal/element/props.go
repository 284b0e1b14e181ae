package element

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrInvalidValue    = errors.New("invalid property value")
)

// Property is one editable field of an element in its wire name and text form.
type Property struct {
	Key   string
	Value string
}

// Properties lists the editable fields of e, geometry first. For text the
// string itself comes last since it may contain spaces.
func (e Element) Properties() []Property {
	props := []Property{{"x", formatNumber(e.X)}, {"y", formatNumber(e.Y)}}
	switch s := e.Shape.(type) {
	case Rectangle:
		props = append(props,
			Property{"width", formatNumber(s.Width)},
			Property{"height", formatNumber(s.Height)},
			Property{"color", s.Color})
	case Circle:
		props = append(props,
			Property{"radius", formatNumber(s.Radius)},
			Property{"color", s.Color})
	case Text:
		props = append(props,
			Property{"fontSize", formatNumber(s.FontSize)},
			Property{"color", s.Color},
			Property{"text", s.Text})
	case Image:
		props = append(props,
			Property{"width", formatNumber(s.Width)},
			Property{"height", formatNumber(s.Height)},
			Property{"src", s.Src})
	}
	return props
}

// canonicalKey maps short and wire spellings onto one name.
func canonicalKey(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "x":
		return "x"
	case "y":
		return "y"
	case "w", "width":
		return "width"
	case "h", "height":
		return "height"
	case "r", "radius":
		return "radius"
	case "size", "fontsize", "font":
		return "fontSize"
	case "text":
		return "text"
	case "color", "colour":
		return "color"
	case "src", "url":
		return "src"
	}
	return key
}

// WithProperty returns e with one field set from its text form, the way a
// toolbar input edits it. Changing the string or font size of a text element
// re-estimates its box unless the value is unchanged; setting width or height
// afterwards overrides it.
func (e Element) WithProperty(key, value string) (Element, error) {
	key = canonicalKey(key)
	switch key {
	case "x", "y":
		v, err := parseNumber(key, value, false)
		if err != nil {
			return e, err
		}
		if key == "x" {
			e.X = v
		} else {
			e.Y = v
		}
		return e, nil
	case "color":
		if e.Kind() == KindImage {
			break
		}
		return e.WithColor(strings.TrimSpace(value)), nil
	}

	switch s := e.Shape.(type) {
	case Rectangle:
		switch key {
		case "width", "height":
			v, err := parseNumber(key, value, true)
			if err != nil {
				return e, err
			}
			if key == "width" {
				s.Width = v
			} else {
				s.Height = v
			}
			e.Shape = s
			return e, nil
		}
	case Circle:
		if key == "radius" {
			v, err := parseNumber(key, value, true)
			if err != nil {
				return e, err
			}
			s.Radius = v
			e.Shape = s
			return e, nil
		}
	case Text:
		switch key {
		case "text":
			if value == s.Text {
				return e, nil
			}
			return NewText(e.X, e.Y, value, s.FontSize, s.Color), nil
		case "fontSize":
			v, err := parseNumber(key, value, true)
			if err != nil || v == s.FontSize {
				return e, err
			}
			return NewText(e.X, e.Y, s.Text, v, s.Color), nil
		case "width", "height":
			v, err := parseNumber(key, value, true)
			if err != nil {
				return e, err
			}
			if key == "width" {
				s.Width = v
			} else {
				s.Height = v
			}
			e.Shape = s
			return e, nil
		}
	case Image:
		switch key {
		case "src":
			s.Src = strings.TrimSpace(value)
			e.Shape = s
			return e, nil
		case "width", "height":
			v, err := parseNumber(key, value, true)
			if err != nil {
				return e, err
			}
			if key == "width" {
				s.Width = v
			} else {
				s.Height = v
			}
			e.Shape = s
			return e, nil
		}
	}
	return e, fmt.Errorf("%w: %s has no %q", ErrUnknownProperty, e.Kind(), key)
}

func parseNumber(key, value string, positive bool) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidValue, key, value)
	}
	if positive && v <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidValue, key)
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
