package surface

import (
	"image"
	"sync"

	"easel/internal/element"
)

// Scheduler runs fn on the goroutine that owns the surface. It is called
// from loader goroutines and must be safe for concurrent use.
type Scheduler func(fn func())

// Queue is the default Scheduler: completions wait until Drain.
type Queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *Queue) Schedule(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *Queue) Drain() int {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

type imageState int

const (
	imagePending imageState = iota
	imageReady
	imageFailed
)

type imageEntry struct {
	state imageState
	img   image.Image
}

// imageCache is keyed by src. Failed sources stay failed.
type imageCache struct {
	entries map[string]*imageEntry
}

func newImageCache() *imageCache {
	return &imageCache{entries: make(map[string]*imageEntry)}
}

func (c *imageCache) get(src string) (*imageEntry, bool) {
	e, ok := c.entries[src]
	return e, ok
}

func (s *Surface) requestImage(index int, src string) {
	if src == "" {
		s.images.entries[src] = &imageEntry{state: imageFailed}
		return
	}
	s.images.entries[src] = &imageEntry{state: imagePending}

	ctx, loader, schedule := s.ctx, s.loader, s.schedule
	go func() {
		img, err := loader.Load(ctx, src)
		schedule(func() { s.imageLoaded(index, src, img, err) })
	}()
}

// imageLoaded runs on the surface goroutine. The pixels are cached either
// way. The surface repaints only if the current list still shows src: first
// at index, then anywhere, since deleting an earlier element shifts the
// image down. A completion for a list that no longer holds src draws nothing.
func (s *Surface) imageLoaded(index int, src string, img image.Image, err error) {
	if err != nil || img == nil {
		s.images.entries[src] = &imageEntry{state: imageFailed}
		return
	}
	s.images.entries[src] = &imageEntry{state: imageReady, img: img}

	if showsImage(s.store.Elements(), index, src) {
		s.Render()
	}
}

func showsImage(els []element.Element, index int, src string) bool {
	if index >= 0 && index < len(els) {
		if im, ok := els[index].Shape.(element.Image); ok && im.Src == src {
			return true
		}
	}
	for _, el := range els {
		if im, ok := el.Shape.(element.Image); ok && im.Src == src {
			return true
		}
	}
	return false
}
