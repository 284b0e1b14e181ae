package imageload

import (
	"context"
	"image"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

const prefetchLimit = 4

// Prefetch loads every distinct non-empty source, a few at a time. Sources
// that fail map to nil; one bad image never fails the batch.
func Prefetch(ctx context.Context, loader Loader, srcs []string) map[string]image.Image {
	var (
		mu   sync.Mutex
		out  = make(map[string]image.Image, len(srcs))
		seen = make(map[string]bool, len(srcs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchLimit)
	for _, src := range srcs {
		if seen[src] {
			continue
		}
		seen[src] = true
		mu.Lock()
		out[src] = nil
		mu.Unlock()
		if src == "" {
			continue
		}
		g.Go(func() error {
			img, err := loader.Load(gctx, src)
			if err != nil {
				log.Printf("[WARN] image %s skipped: %v", src, err)
				return nil
			}
			mu.Lock()
			out[src] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
