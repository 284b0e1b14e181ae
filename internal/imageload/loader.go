// Package imageload resolves the src of an image element into decoded pixels.
package imageload

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedSource = errors.New("unsupported image source")

const defaultMaxBytes = 20 << 20

type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// FetchLoader reads http(s) URLs through Client and everything else from the
// local filesystem (plain paths or file:// URLs).
type FetchLoader struct {
	Client   *http.Client
	MaxBytes int64
}

var _ Loader = FetchLoader{}

func (l FetchLoader) Load(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty src", ErrUnsupportedSource)
	}
	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse image src: %w", err)
	}

	var rc io.ReadCloser
	switch u.Scheme {
	case "http", "https":
		rc, err = l.fetch(ctx, src)
	case "file":
		rc, err = os.Open(u.Path)
	case "":
		rc, err = os.Open(src)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(io.LimitReader(rc, l.maxBytes()))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return img, nil
}

func (l FetchLoader) fetch(ctx context.Context, src string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("fetch %s: HTTP status %d", src, res.StatusCode)
	}
	return res.Body, nil
}

func (l FetchLoader) maxBytes() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return defaultMaxBytes
}
