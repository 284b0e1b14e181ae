package pdfexport

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"easel/internal/element"
	"easel/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	images map[string]image.Image
}

func (l stubLoader) Load(_ context.Context, src string) (image.Image, error) {
	if img, ok := l.images[src]; ok {
		return img, nil
	}
	return nil, errors.New("not found")
}

func square(c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderWritesPDF(t *testing.T) {
	c := store.Canvas{
		Name:   "Poster",
		Width:  800,
		Height: 600,
		Elements: []element.Element{
			element.NewRectangle(10, 10, 100, 50, "#e74c3c"),
			element.NewCircle(300, 300, 40, "teal"),
			element.NewText(50, 200, "Héllo", 24, "#333"),
			element.NewImage(400, 50, 120, 80, "ok.png"),
			element.NewImage(400, 200, 120, 80, "broken.png"),
		},
	}
	loader := stubLoader{images: map[string]image.Image{"ok.png": square(color.NRGBA{B: 255, A: 255})}}

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, c, loader))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderRejectsEmptyPage(t *testing.T) {
	err := Render(context.Background(), &bytes.Buffer{}, store.Canvas{Width: 0, Height: 10}, stubLoader{})
	assert.ErrorIs(t, err, ErrEmptyPage)
}

func TestRenderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Render(ctx, &bytes.Buffer{}, store.Canvas{Width: 10, Height: 10}, stubLoader{})
	assert.ErrorIs(t, err, context.Canceled)
}
