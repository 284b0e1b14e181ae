package server

import (
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

// HandlerWrapper is a middleware: it wraps a handler with extra logic before
// and after ServeHTTP.
type HandlerWrapper interface {
	Wrap(http.Handler) http.Handler
}

type HandlerWrapperFunc func(http.Handler) http.Handler

func (f HandlerWrapperFunc) Wrap(h http.Handler) http.Handler { return f(h) }

type Router struct {
	*http.ServeMux
}

func NewRouter() *Router {
	return &Router{ServeMux: http.NewServeMux()}
}

// Handle registers pattern with the wrappers applied outermost first.
func (r *Router) Handle(pattern string, handler http.Handler, wrappers ...HandlerWrapper) {
	for i := len(wrappers) - 1; i >= 0; i-- {
		handler = wrappers[i].Wrap(handler)
	}
	r.ServeMux.Handle(pattern, handler)
}

func (r *Router) HandleFunc(pattern string, fn func(http.ResponseWriter, *http.Request), wrappers ...HandlerWrapper) {
	r.Handle(pattern, http.HandlerFunc(fn), wrappers...)
}

// Group registers routes under a common prefix. Patterns may carry a method,
// "GET /x" under "/api" becomes "GET /api/x".
func (r *Router) Group(prefix string, batch func(g *RouteGroup), wrappers ...HandlerWrapper) {
	batch(&RouteGroup{router: r, prefix: prefix, wrappers: wrappers})
}

type RouteGroup struct {
	router   *Router
	prefix   string
	wrappers []HandlerWrapper
}

func (g *RouteGroup) HandleFunc(subpattern string, fn func(http.ResponseWriter, *http.Request), wrappers ...HandlerWrapper) {
	pattern := g.prefix + subpattern
	if method, path, ok := strings.Cut(subpattern, " "); ok {
		pattern = method + " " + g.prefix + path
	}
	if strings.Contains(pattern, "//") {
		log.Fatalf("[ERROR] can't register route pattern %s", pattern)
	}
	all := append(append([]HandlerWrapper{}, g.wrappers...), wrappers...)
	g.router.HandleFunc(pattern, fn, all...)
}

var RecoverWrapper = HandlerWrapperFunc(func(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[PANIC] recovered: %v\n%s", rec, debug.Stack())
				WriteSimpleErrorJSON(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		inner.ServeHTTP(w, r)
	})
})

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

var LogWrapper = HandlerWrapperFunc(func(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		inner.ServeHTTP(rec, r)
		log.Printf("[INFO] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
})

// CORSWrapper lets the browser client call the API from another origin.
var CORSWrapper = HandlerWrapperFunc(func(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		inner.ServeHTTP(w, r)
	})
})
