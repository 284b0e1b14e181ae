package tui

import (
	"math"
	"strings"

	"easel/internal/element"
	"easel/internal/history"
	"easel/internal/surface"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// new elements land where the browser toolbar puts them
const addX, addY = 50, 50

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.successMessage = ""
	switch key {
	case "q":
		if m.doc.dirty && m.config.Confirmations {
			m.mode = ModeConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "?":
		m.helpView = renderHelp(m.width)
		m.mode = ModeHelp
	case "r":
		m.addElement(element.NewRectangle(addX, addY, element.DefaultSize, element.DefaultSize, element.DefaultColor))
	case "c":
		m.addElement(element.NewCircle(addX, addY, element.DefaultRadius, element.DefaultColor))
	case "t":
		return m.startPrompt(promptText, "")
	case "i":
		m.imageTarget = surface.NoSelection
		return m.startPrompt(promptImage, "")
	case "enter":
		if _, el, ok := m.doc.selected(); ok {
			return m.startPrompt(promptProps, formatProperties(el))
		}
	case "f":
		if _, el, ok := m.doc.selected(); ok && el.Kind() != element.KindImage {
			return m.startPrompt(promptColor, el.Color())
		}
	case "tab":
		// an element turned into an image asks for its source right away
		if i, ok := m.cycleKind(); ok && m.doc.els[i].Kind() == element.KindImage {
			m.imageTarget = i
			return m.startPrompt(promptImage, "")
		}
	case "x", "delete", "backspace":
		m.deleteSelected()
	case "esc":
		m.doc.SetSelected(surface.NoSelection)
		m.surface.Render()
	case "u":
		m.undo()
	case "ctrl+r":
		m.redo()
	case "s":
		return m.startPrompt(promptSave, m.doc.name)
	case "e":
		return m, exportPDF(m.api, m.doc.id, m.config.GetSavePath(fileBase(m.doc.name)+".pdf"), m.doc.dirty)
	case "p":
		return m, exportPNG(m.doc.canvas(), m.loader, m.config.GetSavePath(fileBase(m.doc.name)+".png"))
	case "y":
		if err := clipboard.WriteAll(m.doc.id); err != nil {
			m.errorMessage = "Clipboard: " + err.Error()
		} else {
			m.successMessage = "Copied canvas id"
		}
	case "h", "left", "H", "shift+left",
		"l", "right", "L", "shift+right",
		"k", "up", "K", "shift+up",
		"j", "down", "J", "shift+down":
		m.nudge(key, m.getMoveSpeed(key))
	}
	return m, nil
}

func (m Model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 10
	default:
		return 1
	}
}

// nudge moves the selected element by speed terminal cells. A cell is
// twice as tall as it is wide.
func (m *Model) nudge(key string, speed int) {
	i, el, ok := m.doc.selected()
	if !ok {
		return
	}
	s := m.scale()
	stepX := math.Max(1, math.Round(s)) * float64(speed)
	stepY := math.Max(1, math.Round(2*s)) * float64(speed)
	dx, dy := 0.0, 0.0
	switch key {
	case "h", "left", "H", "shift+left":
		dx = -stepX
	case "l", "right", "L", "shift+right":
		dx = stepX
	case "k", "up", "K", "shift+up":
		dy = -stepY
	case "j", "down", "J", "shift+down":
		dy = stepY
	}
	m.apply(history.ActionNudge, element.Replace(m.doc.els, i, el.MoveTo(el.X+dx, el.Y+dy)))
}

// apply swaps in a new element list, records it and repaints.
func (m *Model) apply(t history.ActionType, next []element.Element) {
	before := m.doc.els
	m.doc.SetElements(next)
	m.history.Record(t, before, next)
	m.surface.Render()
}

func (m *Model) addElement(el element.Element) {
	if m.doc == nil {
		return
	}
	next := append(element.Clone(m.doc.els), el)
	m.doc.SetSelected(len(next) - 1)
	m.apply(history.ActionAdd, next)
}

func (m *Model) deleteSelected() {
	i, _, ok := m.doc.selected()
	if !ok {
		return
	}
	m.doc.SetSelected(surface.NoSelection)
	m.apply(history.ActionDelete, element.Remove(m.doc.els, i))
}

// cycleKind converts the selection to the next kind and reports its index.
func (m *Model) cycleKind() (int, bool) {
	i, el, ok := m.doc.selected()
	if !ok {
		return 0, false
	}
	kinds := element.Kinds
	next := kinds[0]
	for k, kind := range kinds {
		if kind == el.Kind() {
			next = kinds[(k+1)%len(kinds)]
			break
		}
	}
	converted, err := el.WithKind(next)
	if err != nil {
		m.errorMessage = err.Error()
		return 0, false
	}
	m.apply(history.ActionChangeKind, element.Replace(m.doc.els, i, converted))
	return i, true
}

// editSelected applies "key=value" assignments to the selected element as
// one undoable edit.
func (m *Model) editSelected(value string) {
	i, el, ok := m.doc.selected()
	if !ok {
		return
	}
	props, err := parseAssignments(value)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	next := el
	for _, p := range props {
		if next, err = next.WithProperty(p.Key, p.Value); err != nil {
			m.errorMessage = err.Error()
			return
		}
	}
	if next == el {
		return
	}
	m.apply(history.ActionEdit, element.Replace(m.doc.els, i, next))
	m.errorMessage = ""
}

// placeImage fills in the image element at target, or adds a new image when
// target no longer points at one.
func (m *Model) placeImage(target int, src string) {
	if target >= 0 && target < len(m.doc.els) && m.doc.els[target].Kind() == element.KindImage {
		if el, err := m.doc.els[target].WithProperty("src", src); err == nil {
			m.apply(history.ActionEdit, element.Replace(m.doc.els, target, el))
			return
		}
	}
	m.addElement(element.NewImage(addX, addY, element.DefaultSize, element.DefaultSize, src))
}

func (m *Model) undo() {
	action, list, ok := m.history.Undo()
	if !ok {
		m.successMessage = "Nothing to undo"
		return
	}
	m.restore(list)
	m.successMessage = "Undid " + action.Type.String()
}

func (m *Model) redo() {
	action, list, ok := m.history.Redo()
	if !ok {
		m.successMessage = "Nothing to redo"
		return
	}
	m.restore(list)
	m.successMessage = "Redid " + action.Type.String()
}

func (m *Model) restore(list []element.Element) {
	m.doc.SetElements(list)
	if m.doc.sel >= len(list) {
		m.doc.SetSelected(surface.NoSelection)
	}
	m.surface.Render()
}

func (m Model) startPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.promptFrom = m.mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.mode = ModePrompt
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.mode = m.promptFrom
		m.imageTarget = surface.NoSelection
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.mode = m.promptFrom
		return m.submitPrompt(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt(value string) (tea.Model, tea.Cmd) {
	switch m.prompt {
	case promptSave:
		c := m.doc.canvas()
		c.Name = value
		return m, saveCanvas(m.api, c)
	case promptText:
		if value != "" {
			m.addElement(element.NewText(addX, addY, value, element.DefaultFontSize, element.DefaultColor))
		}
	case promptImage:
		target := m.imageTarget
		m.imageTarget = surface.NoSelection
		if value != "" {
			return m, resolveImage(m.api, value, target)
		}
	case promptColor:
		if i, el, ok := m.doc.selected(); ok && value != "" {
			m.apply(history.ActionRecolor, element.Replace(m.doc.els, i, el.WithColor(value)))
		}
	case promptProps:
		m.editSelected(value)
	case promptCanvasSize:
		w, h, err := parseCanvasSize(value)
		if err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.mode = ModeLoading
		return m, createCanvas(m.api, w, h)
	}
	return m, nil
}

// fileBase turns a canvas name into a safe file name.
func fileBase(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "canvas"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
