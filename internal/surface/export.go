package surface

import (
	"context"
	"errors"
	"io"

	"easel/internal/element"
	"easel/internal/imageload"
)

var ErrNothingToExport = errors.New("nothing to export")

// staticList is a read-only host for one-off renders.
type staticList []element.Element

func (l staticList) Elements() []element.Element { return l }
func (staticList) SetElements([]element.Element) {}
func (staticList) Selected() int                 { return NoSelection }
func (staticList) SetSelected(int)               {}

// ExportPNG renders els onto a width x height raster and writes it as PNG.
// Unlike the interactive surface it waits for every image first; sources that
// fail to load are left out.
func ExportPNG(ctx context.Context, w io.Writer, els []element.Element, width, height int, loader imageload.Loader) error {
	if width <= 0 || height <= 0 {
		return ErrNothingToExport
	}
	if loader == nil {
		loader = imageload.FetchLoader{}
	}
	s := New(staticList(els), staticList(els), WithLoader(loader))
	defer s.Close()

	for src, img := range imageload.Prefetch(ctx, loader, element.ImageSources(els)) {
		if img == nil {
			s.images.entries[src] = &imageEntry{state: imageFailed}
			continue
		}
		s.images.entries[src] = &imageEntry{state: imageReady, img: img}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Resize(width, height)
	return s.EncodePNG(w)
}

