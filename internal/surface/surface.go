// Package surface implements the interactive canvas: it paints an element
// list onto a raster, hit-tests pointer positions and turns pointer drags
// into moves and corner resizes of the selected element.
//
// A Surface is driven from a single goroutine. The only work done elsewhere
// is image fetching, whose results come back through a Scheduler.
package surface

import (
	"context"
	"errors"
	"image"
	"io"

	"easel/internal/element"
	"easel/internal/imageload"

	"github.com/fogleman/gg"
)

var ErrNoContext = errors.New("surface has no drawing context")

// ElementStore is owned by the host. The surface reads the list to paint and
// hit-test and replaces it wholesale after a drag or resize.
type ElementStore interface {
	Elements() []element.Element
	SetElements(list []element.Element)
}

// SelectionController is owned by the host and holds the selected index or
// NoSelection.
type SelectionController interface {
	Selected() int
	SetSelected(index int)
}

type ChangeKind int

const (
	ChangeMove ChangeKind = iota
	ChangeResize
)

func (k ChangeKind) String() string {
	if k == ChangeResize {
		return "resize"
	}
	return "move"
}

type sessionMode int

const (
	sessionNone sessionMode = iota
	sessionDrag
	sessionResize
)

// session lives between pointer down and pointer up.
type session struct {
	mode   sessionMode
	index  int
	offset element.Point
	handle Handle
	before []element.Element
	moved  bool
}

type Surface struct {
	store ElementStore
	sel   SelectionController

	dc            *gg.Context
	width, height int

	session session
	images  *imageCache
	fonts   *fontCache

	loader   imageload.Loader
	schedule Scheduler
	queue    *Queue
	ctx      context.Context
	cancel   context.CancelFunc

	// OnChange fires on pointer up when the finished session changed the list.
	OnChange func(kind ChangeKind, before, after []element.Element)
}

type Option func(*Surface)

func WithLoader(l imageload.Loader) Option {
	return func(s *Surface) { s.loader = l }
}

// WithScheduler routes image load completions onto the host's event loop.
// Without it completions are queued and run by Drain.
func WithScheduler(fn Scheduler) Option {
	return func(s *Surface) { s.schedule = fn }
}

func New(store ElementStore, sel SelectionController, opts ...Option) *Surface {
	s := &Surface{
		store:  store,
		sel:    sel,
		images: newImageCache(),
		fonts:  newFontCache(),
		loader: imageload.FetchLoader{},
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	if s.schedule == nil {
		s.queue = &Queue{}
		s.schedule = s.queue.Schedule
	}
	return s
}

// Close abandons outstanding image loads.
func (s *Surface) Close() {
	s.cancel()
}

// Resize attaches a fresh drawing context of the given size and repaints.
// A non-positive dimension detaches the context.
func (s *Surface) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		s.dc = nil
		s.width, s.height = 0, 0
		return
	}
	s.dc = gg.NewContext(width, height)
	s.width, s.height = width, height
	s.Render()
}

func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Image returns the last rendered frame, or nil without a context.
func (s *Surface) Image() image.Image {
	if s.dc == nil {
		return nil
	}
	return s.dc.Image()
}

func (s *Surface) EncodePNG(w io.Writer) error {
	if s.dc == nil {
		return ErrNoContext
	}
	return s.dc.EncodePNG(w)
}

// Drain runs queued image completions when no Scheduler was supplied.
func (s *Surface) Drain() int {
	if s.queue == nil {
		return 0
	}
	return s.queue.Drain()
}

// selected returns the selection if it still points into els.
func (s *Surface) selected(els []element.Element) int {
	i := s.sel.Selected()
	if i < 0 || i >= len(els) {
		return NoSelection
	}
	return i
}

// Locate returns the topmost element containing p.
func (s *Surface) Locate(p element.Point) int {
	if s.dc == nil {
		return NoSelection
	}
	els := s.store.Elements()
	for i := len(els) - 1; i >= 0; i-- {
		if els[i].Contains(p) {
			return i
		}
	}
	return NoSelection
}

// HandleAt tests p against the corner handles of the selected element only.
func (s *Surface) HandleAt(p element.Point) Handle {
	if s.dc == nil {
		return NoHandle
	}
	els := s.store.Elements()
	i := s.selected(els)
	if i == NoSelection {
		return NoHandle
	}
	return handleAt(els[i], p)
}

func (s *Surface) Dragging() bool {
	return s.session.mode == sessionDrag
}

func (s *Surface) Resizing() bool {
	return s.session.mode == sessionResize
}

func (s *Surface) PointerDown(p element.Point) {
	s.session = session{}

	i := s.Locate(p)
	if i == NoSelection {
		s.sel.SetSelected(NoSelection)
		s.Render()
		return
	}

	els := s.store.Elements()
	el := els[i]
	if h := handleAt(el, p); h != NoHandle {
		s.session = session{mode: sessionResize, index: i, handle: h, before: element.Clone(els)}
	} else {
		s.session = session{
			mode:   sessionDrag,
			index:  i,
			offset: element.Point{X: p.X - el.X, Y: p.Y - el.Y},
			before: element.Clone(els),
		}
	}
	s.sel.SetSelected(i)
	s.Render()
}

func (s *Surface) PointerMove(p element.Point) {
	if s.session.mode == sessionNone {
		return
	}
	els := s.store.Elements()
	i := s.session.index
	if i < 0 || i >= len(els) {
		s.session = session{}
		return
	}

	el := els[i]
	var next element.Element
	switch s.session.mode {
	case sessionDrag:
		next = el.MoveTo(p.X-s.session.offset.X, p.Y-s.session.offset.Y)
	case sessionResize:
		r, ok := el.Bounds()
		if !ok {
			return
		}
		next = el.WithBox(ResizeBox(r, s.session.handle, p))
	}

	s.session.moved = true
	s.store.SetElements(element.Replace(els, i, next))
	s.Render()
}

func (s *Surface) PointerUp(element.Point) {
	done := s.session
	s.session = session{}
	if !done.moved || s.OnChange == nil {
		return
	}
	kind := ChangeMove
	if done.mode == sessionResize {
		kind = ChangeResize
	}
	s.OnChange(kind, done.before, s.store.Elements())
}
