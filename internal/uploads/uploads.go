// Package uploads stores uploaded images on local disk and names their
// public URLs.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const RoutePrefix = "/uploads/"

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("upload too large")
)

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

type Dir struct {
	Root      string
	PublicURL string
	MaxBytes  int64
}

// Save copies r into the upload directory under a fresh name that keeps the
// extension of filename, and returns the public URL of the stored file.
func (d Dir) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Base(filename))
	}
	if err := os.MkdirAll(d.Root, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(d.Root, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	src := r
	if d.MaxBytes > 0 {
		src = io.LimitReader(r, d.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && d.MaxBytes > 0 && n > d.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return d.URL(name), nil
}

func (d Dir) URL(name string) string {
	return strings.TrimRight(d.PublicURL, "/") + RoutePrefix + name
}

// Path resolves a stored name back to its file, refusing anything that is
// not a plain file name.
func (d Dir) Path(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return filepath.Join(d.Root, name), true
}
