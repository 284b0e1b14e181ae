package history

import (
	"testing"

	"easel/internal/element"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoRedoRestoresSnapshots(t *testing.T) {
	h := New(0)
	empty := []element.Element{}
	one := []element.Element{element.NewRectangle(10, 10, 50, 50, "red")}
	moved := []element.Element{element.NewRectangle(40, 40, 50, 50, "red")}

	h.Record(ActionAdd, empty, one)
	h.Record(ActionMove, one, moved)

	action, list, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, ActionMove, action.Type)
	assert.Equal(t, one, list)

	_, list, ok = h.Undo()
	require.True(t, ok)
	assert.Empty(t, list)

	_, _, ok = h.Undo()
	assert.False(t, ok)

	action, list, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, ActionAdd, action.Type)
	assert.Equal(t, one, list)
	assert.True(t, h.CanRedo())
}

func TestRecordClearsRedo(t *testing.T) {
	h := New(0)
	a := []element.Element{element.NewCircle(0, 0, 10, "")}
	b := []element.Element{element.NewCircle(5, 5, 10, "")}

	h.Record(ActionMove, a, b)
	h.Undo()
	require.True(t, h.CanRedo())

	h.Record(ActionMove, a, b)
	assert.False(t, h.CanRedo())
}

func TestRecordSnapshotsAreIsolated(t *testing.T) {
	h := New(0)
	before := []element.Element{element.NewRectangle(0, 0, 10, 10, "")}
	after := []element.Element{element.NewRectangle(20, 20, 10, 10, "")}
	h.Record(ActionMove, before, after)

	before[0] = element.NewCircle(1, 1, 1, "")
	_, list, _ := h.Undo()
	assert.Equal(t, element.KindRectangle, list[0].Kind())

	list[0] = element.NewCircle(1, 1, 1, "")
	_, list, _ = h.Redo()
	assert.Equal(t, element.Point{X: 20, Y: 20}, list[0].Anchor())
}

func TestDepthIsBounded(t *testing.T) {
	h := New(3)
	for i := 0; i < 5; i++ {
		h.Record(ActionNudge, nil, []element.Element{element.NewCircle(float64(i), 0, 1, "")})
	}
	n := 0
	for h.CanUndo() {
		h.Undo()
		n++
	}
	assert.Equal(t, 3, n)
}

func TestReset(t *testing.T) {
	h := New(0)
	h.Record(ActionAdd, nil, nil)
	h.Reset()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, "add", ActionAdd.String())
	assert.Equal(t, "edit", ActionEdit.String())
}
