package client

import (
	"bytes"
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"easel/internal/element"
	"easel/internal/exportcache"
	"easel/internal/server"
	"easel/internal/store"
	"easel/internal/uploads"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offline struct{}

func (offline) Load(context.Context, string) (image.Image, error) {
	return nil, errors.New("offline")
}

func newAPI(t *testing.T) *Client {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(context.Background(), "sqlite", filepath.Join(dir, "easel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := &server.Server{
		Store:   st,
		Uploads: uploads.Dir{Root: filepath.Join(dir, "uploads")},
		Cache:   exportcache.NewMemory(4, 0),
		Loader:  offline{},
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	s.Uploads.PublicURL = srv.URL
	return New(srv.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newAPI(t)

	id, err := c.Create(ctx, 640, 480)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, c.AddElement(ctx, id, element.NewCircle(100, 100, 20, "red")))

	cv, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 640.0, cv.Width)
	require.Len(t, cv.Elements, 1)
	assert.Equal(t, element.KindCircle, cv.Elements[0].Kind())

	cv.Name = "Sketch"
	cv.Elements = append(cv.Elements, element.NewText(10, 30, "hi", 20, "#000000"))
	name, err := c.Update(ctx, id, cv)
	require.NoError(t, err)
	assert.Equal(t, "Sketch", name)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []store.Summary{{ID: id, Name: "Sketch"}}, list)

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var pdf bytes.Buffer
	require.NoError(t, c.Export(ctx, id, &pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))

	url, err := c.Upload(ctx, "/tmp/photo.png", strings.NewReader("png bytes"))
	require.NoError(t, err)
	assert.Contains(t, url, "/uploads/")
	assert.True(t, strings.HasSuffix(url, ".png"))
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	ctx := context.Background()
	c := newAPI(t)

	_, err := c.Get(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "canvas not found", apiErr.Message)

	err = c.Export(ctx, "missing", &bytes.Buffer{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = c.Upload(ctx, "notes.txt", strings.NewReader("x"))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = c.Create(ctx, 0, 0)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClientEscapesIDs(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"canvas not found"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL)
	_, err := c.Get(ctx, "a/b")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, _ = c.Update(ctx, "x?y", store.Canvas{Width: 1, Height: 1})
	_ = c.AddElement(ctx, "50% off", element.NewCircle(0, 0, 1, ""))
	_ = c.Export(ctx, "a/b", &bytes.Buffer{})
	assert.Equal(t, []string{
		"/api/canvas/a%2Fb",
		"/api/canvas/x%3Fy",
		"/api/canvas/50%25%20off/elements",
		"/api/canvas/a%2Fb/export",
	}, paths)

	// the real router answers an escaped slash with a plain not-found
	_, err = newAPI(t).Get(ctx, "a/b")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "canvas not found", apiErr.Message)
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Count(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.Equal(t, "api: HTTP 502: bad gateway", err.Error())
}
