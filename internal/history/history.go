// Package history keeps undo and redo stacks of element-list edits.
package history

import "easel/internal/element"

const DefaultDepth = 100

type ActionType int

const (
	ActionAdd ActionType = iota
	ActionDelete
	ActionMove
	ActionResize
	ActionChangeKind
	ActionNudge
	ActionRecolor
	ActionEdit
)

func (t ActionType) String() string {
	switch t {
	case ActionAdd:
		return "add"
	case ActionDelete:
		return "delete"
	case ActionMove:
		return "move"
	case ActionResize:
		return "resize"
	case ActionChangeKind:
		return "change kind"
	case ActionNudge:
		return "nudge"
	case ActionRecolor:
		return "recolor"
	case ActionEdit:
		return "edit"
	}
	return "unknown"
}

// Action holds the list after the edit (Data) and before it (Inverse).
type Action struct {
	Type    ActionType
	Data    []element.Element
	Inverse []element.Element
}

type History struct {
	undoStack []Action
	redoStack []Action
	depth     int
}

func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth}
}

// Record pushes an edit and drops anything that could have been redone.
func (h *History) Record(t ActionType, before, after []element.Element) {
	action := Action{
		Type:    t,
		Data:    element.Clone(after),
		Inverse: element.Clone(before),
	}
	h.undoStack = append(h.undoStack, action)
	if len(h.undoStack) > h.depth {
		h.undoStack = h.undoStack[len(h.undoStack)-h.depth:]
	}
	h.redoStack = h.redoStack[:0]
}

// Undo pops the last edit and returns the list to restore.
func (h *History) Undo() (Action, []element.Element, bool) {
	if len(h.undoStack) == 0 {
		return Action{}, nil, false
	}
	lastIndex := len(h.undoStack) - 1
	action := h.undoStack[lastIndex]
	h.undoStack = h.undoStack[:lastIndex]
	h.redoStack = append(h.redoStack, action)
	return action, element.Clone(action.Inverse), true
}

func (h *History) Redo() (Action, []element.Element, bool) {
	if len(h.redoStack) == 0 {
		return Action{}, nil, false
	}
	lastIndex := len(h.redoStack) - 1
	action := h.redoStack[lastIndex]
	h.redoStack = h.redoStack[:lastIndex]
	h.undoStack = append(h.undoStack, action)
	return action, element.Clone(action.Data), true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Reset forgets everything, e.g. after loading another canvas.
func (h *History) Reset() {
	h.undoStack = nil
	h.redoStack = nil
}
