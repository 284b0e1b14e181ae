package tui

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// fitScale returns canvas pixels per terminal column so that a w x h canvas
// fits in cols x rows cells. Each cell shows two vertical samples.
func fitScale(w, h float64, cols, rows int) float64 {
	if cols <= 0 || rows <= 0 || w <= 0 || h <= 0 {
		return 1
	}
	return max(w/float64(cols), h/float64(2*rows), 0.01)
}

type cellColors struct {
	fg, bg       string
	hasFg, hasBg bool
}

func hex(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// rasterize draws img into cols x rows cells with half blocks: the upper
// half of cell (cx, cy) samples canvas point (cx*scale, 2*cy*scale) and the
// lower half the row below it.
func rasterize(img image.Image, cols, rows int, scale float64) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	var sb strings.Builder
	for cy := 0; cy < rows; cy++ {
		var run cellColors
		n := 0
		flush := func() {
			if n == 0 {
				return
			}
			text := strings.Repeat(halfBlock, n)
			if !run.hasFg {
				text = strings.Repeat(" ", n)
			}
			style := lipgloss.NewStyle()
			if run.hasFg {
				style = style.Foreground(lipgloss.Color(run.fg))
			}
			if run.hasBg {
				style = style.Background(lipgloss.Color(run.bg))
			}
			sb.WriteString(style.Render(text))
			n = 0
		}
		for cx := 0; cx < cols; cx++ {
			x := b.Min.X + int(float64(cx)*scale)
			y0 := b.Min.Y + int(float64(2*cy)*scale)
			y1 := b.Min.Y + int(float64(2*cy+1)*scale)

			var c cellColors
			if x < b.Max.X && y0 < b.Max.Y {
				c.fg, c.hasFg = hex(img, x, y0), true
				if y1 < b.Max.Y {
					c.bg, c.hasBg = hex(img, x, y1), true
				}
			}
			if n > 0 && c != run {
				flush()
			}
			run = c
			n++
		}
		flush()
		if cy < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
