package tui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"easel/internal/imageload"
	"easel/internal/store"
	"easel/internal/surface"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 30 * time.Second

type (
	completionMsg struct{ fn func() }
	canvasesMsg   struct {
		list []store.Summary
		err  error
	}
	createdMsg struct {
		id  string
		err error
	}
	canvasLoadedMsg struct {
		canvas store.Canvas
		err    error
	}
	savedMsg struct {
		name string
		err  error
	}
	exportedMsg struct {
		path  string
		stale bool
		err   error
	}
	uploadedMsg struct {
		url    string
		target int
		err    error
	}
)

// waitForCompletion delivers image load completions into the update loop,
// one at a time.
func waitForCompletion(ch <-chan func()) tea.Cmd {
	return func() tea.Msg {
		return completionMsg{fn: <-ch}
	}
}

func listCanvases(api API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		list, err := api.List(ctx)
		return canvasesMsg{list: list, err: err}
	}
}

func createCanvas(api API, width, height float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		id, err := api.Create(ctx, width, height)
		return createdMsg{id: id, err: err}
	}
}

func loadCanvas(api API, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c, err := api.Get(ctx, id)
		return canvasLoadedMsg{canvas: c, err: err}
	}
}

func saveCanvas(api API, c store.Canvas) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		name, err := api.Update(ctx, c.ID, c)
		return savedMsg{name: name, err: err}
	}
}

// exportPDF renders on the server, which only knows the saved state. stale
// marks an export requested while there were unsaved edits.
func exportPDF(api API, id, path string, stale bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var buf bytes.Buffer
		if err := api.Export(ctx, id, &buf); err != nil {
			return exportedMsg{err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path, stale: stale}
	}
}

// exportPNG renders locally so unsaved edits are included.
func exportPNG(c store.Canvas, loader imageload.Loader, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var buf bytes.Buffer
		if err := surface.ExportPNG(ctx, &buf, c.Elements, int(c.Width), int(c.Height), loader); err != nil {
			return exportedMsg{err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

// resolveImage uploads a local file and passes URLs through untouched.
// target is carried through to the result.
func resolveImage(api API, src string, target int) tea.Cmd {
	return func() tea.Msg {
		if isRemote(src) {
			return uploadedMsg{url: src, target: target}
		}
		path := src
		if abs, err := filepath.Abs(src); err == nil {
			path = abs
		}
		f, err := os.Open(path)
		if err != nil {
			return uploadedMsg{target: target, err: err}
		}
		defer f.Close()
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		url, err := api.Upload(ctx, filepath.Base(path), f)
		return uploadedMsg{url: url, target: target, err: err}
	}
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
