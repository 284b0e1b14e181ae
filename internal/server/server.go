// Package server exposes the canvas store, PDF export and image uploads over
// a JSON REST API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"easel/internal/element"
	"easel/internal/exportcache"
	"easel/internal/imageload"
	"easel/internal/pdfexport"
	"easel/internal/store"
	"easel/internal/uploads"
)

const maxJSONBody = 10 << 20

type CanvasStore interface {
	Create(ctx context.Context, c store.Canvas) (string, error)
	Get(ctx context.Context, id string) (store.Canvas, error)
	Update(ctx context.Context, id string, c store.Canvas) (string, error)
	AddElement(ctx context.Context, id string, el element.Element) error
	List(ctx context.Context) ([]store.Summary, error)
	Count(ctx context.Context) (int, error)
}

type Server struct {
	Store   CanvasStore
	Uploads uploads.Dir
	Cache   exportcache.Cache
	Loader  imageload.Loader
}

// canvasRequest is the body of create and update. Sizes may arrive as
// strings from HTML form inputs.
type canvasRequest struct {
	Name     string            `json:"name"`
	Width    element.Number    `json:"width"`
	Height   element.Number    `json:"height"`
	Elements []element.Element `json:"elements"`
}

func (r canvasRequest) canvas() store.Canvas {
	return store.Canvas{
		Name:     strings.TrimSpace(r.Name),
		Width:    float64(r.Width),
		Height:   float64(r.Height),
		Elements: r.Elements,
	}
}

func (s *Server) Handler() http.Handler {
	r := NewRouter()
	r.Group("/api/canvas", func(g *RouteGroup) {
		g.HandleFunc("POST ", s.createCanvas)
		g.HandleFunc("GET ", s.listCanvases)
		g.HandleFunc("GET /count", s.countCanvases)
		g.HandleFunc("POST /upload", s.uploadImage)
		g.HandleFunc("GET /{id}", s.getCanvas)
		g.HandleFunc("PUT /{id}", s.updateCanvas)
		g.HandleFunc("POST /{id}/elements", s.addElement)
		g.HandleFunc("GET /{id}/export", s.exportCanvas)
	}, RecoverWrapper, LogWrapper)
	r.HandleFunc("GET "+uploads.RoutePrefix+"{name}", s.serveUpload, RecoverWrapper)
	return CORSWrapper.Wrap(r)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			WriteSimpleErrorJSON(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		WriteSimpleErrorJSON(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeStoreError maps store failures onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteSimpleErrorJSON(w, http.StatusNotFound, "canvas not found")
	case errors.Is(err, store.ErrInvalidSize):
		WriteSimpleErrorJSON(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] store: %v", err)
		WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) createCanvas(w http.ResponseWriter, r *http.Request) {
	var req canvasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := s.Store.Create(r.Context(), req.canvas())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	EncodeWriteJSON(w, http.StatusCreated, map[string]string{"_id": id})
}

func (s *Server) listCanvases(w http.ResponseWriter, r *http.Request) {
	list, err := s.Store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	EncodeWriteJSON(w, http.StatusOK, list)
}

func (s *Server) countCanvases(w http.ResponseWriter, r *http.Request) {
	n, err := s.Store.Count(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	EncodeWriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) getCanvas(w http.ResponseWriter, r *http.Request) {
	c, err := s.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	EncodeWriteJSON(w, http.StatusOK, c)
}

// updateCanvas replaces the canvas state. A body without a size keeps the
// stored one, as the browser's save dialog only sends name and elements.
func (s *Server) updateCanvas(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req canvasRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next := req.canvas()
	if next.Width == 0 || next.Height == 0 {
		current, err := s.Store.Get(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if next.Width == 0 {
			next.Width = current.Width
		}
		if next.Height == 0 {
			next.Height = current.Height
		}
	}
	if next.Elements == nil {
		next.Elements = []element.Element{}
	}
	name, err := s.Store.Update(r.Context(), id, next)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	EncodeWriteJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (s *Server) addElement(w http.ResponseWriter, r *http.Request) {
	var el element.Element
	if !decodeJSON(w, r, &el) {
		return
	}
	if err := s.Store.AddElement(r.Context(), r.PathValue("id"), el); err != nil {
		writeStoreError(w, err)
		return
	}
	EncodeWriteJSON(w, http.StatusCreated, el)
}

func (s *Server) exportCanvas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := s.Store.Get(ctx, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	filename := exportFilename(c)

	key := exportcache.Key("pdf", c.ID, c.UpdatedAt)
	if s.Cache != nil {
		if data, ok, err := s.Cache.Get(ctx, key); err != nil {
			log.Printf("[WARN] export cache get %s: %v", key, err)
		} else if ok {
			WritePDFBytesWithFilename(w, filename, data)
			return
		}
	}

	var buf bytes.Buffer
	if err := pdfexport.Render(ctx, &buf, c, s.Loader); err != nil {
		log.Printf("[ERROR] export %s: %v", c.ID, err)
		WriteSimpleErrorJSON(w, http.StatusInternalServerError, "export failed")
		return
	}
	if s.Cache != nil {
		if err := s.Cache.Put(ctx, key, buf.Bytes()); err != nil {
			log.Printf("[WARN] export cache put %s: %v", key, err)
		}
	}
	WritePDFBytesWithFilename(w, filename, buf.Bytes())
}

func exportFilename(c store.Canvas) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' {
			return '_'
		}
		return r
	}, strings.TrimSpace(c.Name))
	if name == "" {
		name = "canvas"
	}
	return name + ".pdf"
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	limit := s.Uploads.MaxBytes
	if limit > 0 {
		// room for the multipart envelope
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			WriteSimpleErrorJSON(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		WriteSimpleErrorJSON(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	url, err := s.Uploads.Save(header.Filename, file)
	switch {
	case errors.Is(err, uploads.ErrUnsupportedType):
		WriteSimpleErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, uploads.ErrTooLarge):
		WriteSimpleErrorJSON(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	case err != nil:
		log.Printf("[ERROR] upload: %v", err)
		WriteSimpleErrorJSON(w, http.StatusInternalServerError, "upload failed")
		return
	}
	EncodeWriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	path, ok := s.Uploads.Path(r.PathValue("name"))
	if !ok {
		WriteSimpleErrorJSON(w, http.StatusNotFound, "not found")
		return
	}
	if _, err := os.Stat(path); err != nil {
		WriteSimpleErrorJSON(w, http.StatusNotFound, "not found")
		return
	}
	http.ServeFile(w, r, path)
}
