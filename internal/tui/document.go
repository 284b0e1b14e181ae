package tui

import (
	"easel/internal/element"
	"easel/internal/store"
	"easel/internal/surface"
)

// document is the open canvas. It is the element store and the selection
// controller the surface edits through.
type document struct {
	id            string
	name          string
	width, height float64
	els           []element.Element
	sel           int
	dirty         bool
}

func newDocument(c store.Canvas) *document {
	return &document{
		id:     c.ID,
		name:   c.Name,
		width:  c.Width,
		height: c.Height,
		els:    element.Clone(c.Elements),
		sel:    surface.NoSelection,
	}
}

func (d *document) Elements() []element.Element { return d.els }

func (d *document) SetElements(list []element.Element) {
	d.els = list
	d.dirty = true
}

func (d *document) Selected() int { return d.sel }

func (d *document) SetSelected(i int) { d.sel = i }

// selected returns the selected element if the selection is still valid.
func (d *document) selected() (int, element.Element, bool) {
	if d.sel < 0 || d.sel >= len(d.els) {
		return surface.NoSelection, element.Element{}, false
	}
	return d.sel, d.els[d.sel], true
}

func (d *document) canvas() store.Canvas {
	return store.Canvas{
		ID:       d.id,
		Name:     d.name,
		Width:    d.width,
		Height:   d.height,
		Elements: element.Clone(d.els),
	}
}
