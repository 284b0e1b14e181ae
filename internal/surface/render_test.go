package surface

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"
	"time"

	"easel/internal/element"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	img   image.Image
	err   error
	gate  chan struct{}
}

func (f *fakeLoader) Load(ctx context.Context, src string) (image.Image, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.img == nil && f.err == nil {
		return nil, errors.New("no image")
	}
	return f.img, f.err
}

func (f *fakeLoader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func colorOf(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func pixel(s *Surface, x, y int) color.RGBA {
	return colorOf(s.Image().At(x, y))
}

func drain(t *testing.T, s *Surface) {
	t.Helper()
	require.Eventually(t, func() bool { return s.Drain() > 0 }, time.Second, 5*time.Millisecond)
}

func TestRenderPaintsInOrder(t *testing.T) {
	h := newHost(
		element.NewRectangle(50, 50, 100, 60, "#ff0000"),
		element.NewCircle(300, 200, 40, "#00ff00"),
		element.NewRectangle(120, 60, 100, 60, "#00ff00"),
	)
	s := newSurface(t, h)

	assert.Equal(t, white, pixel(s, 10, 10))
	assert.Equal(t, red, pixel(s, 80, 80))
	assert.Equal(t, green, pixel(s, 130, 80), "later elements paint on top")
	assert.Equal(t, green, pixel(s, 300, 200))
}

func TestRenderSelectionAndGuidelines(t *testing.T) {
	h := newHost(element.NewRectangle(250, 20, 100, 60, "#ff0000"))
	s := New(h, h, WithLoader(&fakeLoader{}))
	defer s.Close()
	s.Resize(601, 400)

	assert.Equal(t, white, pixel(s, 300, 298))

	h.sel = 0
	s.Render()
	assert.NotEqual(t, white, pixel(s, 300, 298), "vertical guideline through the center")

	h.els = []element.Element{element.NewRectangle(20, 20, 100, 60, "#ff0000")}
	s.Render()
	assert.Equal(t, white, pixel(s, 300, 298))
	outline := pixel(s, 40, 20)
	assert.NotEqual(t, white, outline, "selection outline drawn")
	assert.NotEqual(t, red, outline)
	assert.Equal(t, white, pixel(s, 498, 200))

	h.els = []element.Element{element.NewRectangle(20, 170, 100, 60, "#ff0000")}
	s.Render()
	assert.NotEqual(t, white, pixel(s, 498, 200), "horizontal guideline through the center")
	assert.Equal(t, white, pixel(s, 300, 298))
}

func TestCircleHasNoSelectionOutline(t *testing.T) {
	h := newHost(element.NewCircle(300, 200, 40, "#ff0000"))
	h.sel = 0
	s := newSurface(t, h)

	assert.Equal(t, white, pixel(s, 300, 250))
	assert.Equal(t, white, pixel(s, 300, 100), "no guideline for circles")
}

func TestEncodePNG(t *testing.T) {
	h := newHost(element.NewText(20, 40, "Hello", 20, "#000000"))
	s := newSurface(t, h)

	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 600, 400), img.Bounds())
}

func TestImageLoadsAsynchronously(t *testing.T) {
	loader := &fakeLoader{img: solid(green), gate: make(chan struct{})}
	h := newHost(
		element.NewImage(10, 10, 50, 50, "https://example.com/g.png"),
		element.NewRectangle(100, 10, 50, 50, "#ff0000"),
	)
	s := New(h, h, WithLoader(loader))
	defer s.Close()
	s.Resize(200, 100)

	assert.Equal(t, red, pixel(s, 120, 30), "pending image does not block later elements")
	assert.Equal(t, white, pixel(s, 30, 30))

	close(loader.gate)
	drain(t, s)
	assert.Equal(t, green, pixel(s, 30, 30))

	s.Render()
	assert.Equal(t, 1, loader.Calls(), "loaded images come from the cache")
}

func TestStaleImageCompletionDoesNotRepaint(t *testing.T) {
	loader := &fakeLoader{img: solid(green), gate: make(chan struct{})}
	h := newHost(element.NewImage(10, 10, 50, 50, "https://example.com/g.png"))
	s := New(h, h, WithLoader(loader))
	defer s.Close()
	s.Resize(200, 100)

	// replaced without a repaint; a repaint would show the rectangle
	h.els = []element.Element{
		element.NewImage(10, 10, 50, 50, "https://example.com/other.png"),
		element.NewRectangle(100, 10, 50, 50, "#ff0000"),
	}

	close(loader.gate)
	drain(t, s)
	assert.Equal(t, white, pixel(s, 120, 30))
	assert.Equal(t, white, pixel(s, 30, 30))
}

func TestShiftedImageCompletionRepaints(t *testing.T) {
	loader := &fakeLoader{img: solid(green), gate: make(chan struct{})}
	h := newHost(
		element.NewRectangle(100, 10, 50, 50, "#ff0000"),
		element.NewImage(10, 10, 50, 50, "https://example.com/g.png"),
	)
	s := New(h, h, WithLoader(loader))
	defer s.Close()
	s.Resize(200, 100)
	require.Equal(t, red, pixel(s, 120, 30))

	// the rectangle goes away while the image is loading
	h.els = element.Remove(h.els, 0)

	close(loader.gate)
	drain(t, s)
	assert.Equal(t, green, pixel(s, 30, 30))
	assert.Equal(t, white, pixel(s, 120, 30))
}

func TestHugeImageBoxIsClipped(t *testing.T) {
	loader := &fakeLoader{img: solid(green)}
	h := newHost(
		element.NewImage(10, 10, 1e10, 1e10, "g.png"),
		element.NewImage(-1e12, 80, math.Inf(1), 1e300, "g.png"),
	)
	s := New(h, h, WithLoader(loader))
	defer s.Close()

	assert.NotPanics(t, func() {
		s.Resize(100, 100)
		drain(t, s)
	})
	assert.Equal(t, white, pixel(s, 5, 5))
	assert.Equal(t, green, pixel(s, 50, 50))
	assert.Equal(t, green, pixel(s, 5, 90))
	assert.Equal(t, 1, loader.Calls())
}

func TestFailedImageIsSkippedAndNotRetried(t *testing.T) {
	loader := &fakeLoader{err: errors.New("404")}
	h := newHost(
		element.NewImage(10, 10, 50, 50, "https://example.com/missing.png"),
		element.NewImage(60, 10, 50, 50, ""),
	)
	s := New(h, h, WithLoader(loader))
	defer s.Close()
	s.Resize(200, 100)

	drain(t, s)
	s.Render()
	s.Render()

	assert.Equal(t, 1, loader.Calls(), "empty src never reaches the loader")
	assert.Equal(t, white, pixel(s, 30, 30))
}

func TestWithSchedulerRunsCompletionsThroughHost(t *testing.T) {
	loader := &fakeLoader{img: solid(green)}
	completions := make(chan func(), 1)
	h := newHost(element.NewImage(0, 0, 20, 20, "g.png"))
	s := New(h, h, WithLoader(loader), WithScheduler(func(fn func()) { completions <- fn }))
	defer s.Close()
	s.Resize(40, 40)

	select {
	case fn := <-completions:
		fn()
	case <-time.After(time.Second):
		t.Fatal("completion was never scheduled")
	}
	assert.Equal(t, green, pixel(s, 10, 10))
	assert.Zero(t, s.Drain())
}

func TestTextDrawsAboveAnchorAndHitsBelow(t *testing.T) {
	h := newHost(element.NewText(20, 100, "HHHH", 40, "#000000"))
	s := newSurface(t, h)

	inked := func(y0, y1 int) bool {
		for y := y0; y < y1; y++ {
			for x := 20; x < 120; x++ {
				if pixel(s, x, y) != white {
					return true
				}
			}
		}
		return false
	}
	assert.True(t, inked(65, 99), "glyphs sit on the baseline at the anchor")
	assert.False(t, inked(103, 140), "the hit box lies below the glyphs")

	assert.Equal(t, 0, s.Locate(pt(40, 120)))
	assert.Equal(t, NoSelection, s.Locate(pt(40, 80)))
}
