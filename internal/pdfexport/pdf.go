// Package pdfexport draws a canvas onto a single PDF page of the same size.
package pdfexport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"

	"easel/internal/element"
	"easel/internal/imageload"
	"easel/internal/store"

	"github.com/jung-kurt/gofpdf"
)

var ErrEmptyPage = errors.New("canvas has no area to export")

// Render writes c as a PDF whose page is exactly c.Width x c.Height points.
// Images that cannot be loaded are skipped.
func Render(ctx context.Context, w io.Writer, c store.Canvas, loader imageload.Loader) error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrEmptyPage
	}
	if loader == nil {
		loader = imageload.FetchLoader{}
	}
	images := imageload.Prefetch(ctx, loader, element.ImageSources(c.Elements))
	if err := ctx.Err(); err != nil {
		return err
	}

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: c.Width, Ht: c.Height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetTitle(c.Name, true)
	p.SetCreator("easel", true)
	p.AddPage()
	tr := p.UnicodeTranslatorFromDescriptor("")

	registered := make(map[string]string)
	for _, el := range c.Elements {
		switch sh := el.Shape.(type) {
		case element.Rectangle:
			p.SetFillColor(rgb(sh.Color))
			p.Rect(el.X, el.Y, sh.Width, sh.Height, "F")
		case element.Circle:
			if sh.Radius <= 0 {
				continue
			}
			p.SetFillColor(rgb(sh.Color))
			p.Circle(el.X, el.Y, sh.Radius, "F")
		case element.Text:
			if sh.Text == "" {
				continue
			}
			size := sh.FontSize
			if size <= 0 {
				size = element.RenderFontSize
			}
			p.SetFont("Helvetica", "", size)
			p.SetTextColor(rgb(sh.Color))
			p.Text(el.X, el.Y, tr(sh.Text))
		case element.Image:
			img := images[sh.Src]
			if img == nil || sh.Width <= 0 || sh.Height <= 0 {
				continue
			}
			name, ok := registered[sh.Src]
			if !ok {
				name = fmt.Sprintf("img%d", len(registered))
				if err := register(p, name, img); err != nil {
					log.Printf("[WARN] image %s skipped: %v", sh.Src, err)
					registered[sh.Src] = ""
					continue
				}
				registered[sh.Src] = name
			}
			if name == "" {
				continue
			}
			p.ImageOptions(name, el.X, el.Y, sh.Width, sh.Height, false,
				gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}

	if err := p.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return p.Output(w)
}

// register hands img to gofpdf as a PNG.
func register(p *gofpdf.Fpdf, name string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	p.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if err := p.Error(); err != nil {
		p.ClearError()
		return err
	}
	return nil
}

func rgb(s string) (int, int, int) {
	r, g, b, _ := element.ParseColor(s).RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8)
}
