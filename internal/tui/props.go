package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"easel/internal/element"
)

// formatProperties renders the editable fields of el as the prompt text.
func formatProperties(el element.Element) string {
	props := el.Properties()
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = p.Key + "=" + p.Value
	}
	return strings.Join(parts, " ")
}

// parseAssignments splits "x=10 r=40 text=Hello world" into properties.
// text takes the rest of the line.
func parseAssignments(s string) ([]element.Property, error) {
	var out []element.Property
	rest := strings.TrimSpace(s)
	for rest != "" {
		key, after, ok := strings.Cut(rest, "=")
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("expected key=value at %q", rest)
		}
		if strings.EqualFold(key, "text") {
			return append(out, element.Property{Key: key, Value: after}), nil
		}
		value, next, _ := strings.Cut(after, " ")
		out = append(out, element.Property{Key: key, Value: value})
		rest = strings.TrimSpace(next)
	}
	return out, nil
}

// parseCanvasSize accepts "600x400", "600 400" or "600,400".
func parseCanvasSize(s string) (float64, float64, error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == 'x' || r == ',' || r == ' ' || r == '*'
	})
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("canvas size %q: want WIDTHxHEIGHT", s)
	}
	var dims [2]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, 0, fmt.Errorf("canvas size %q: %q is not a positive number", s, f)
		}
		dims[i] = v
	}
	return dims[0], dims[1], nil
}
