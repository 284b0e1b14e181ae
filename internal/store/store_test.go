package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"easel/internal/element"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "easel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	els := []element.Element{
		element.NewRectangle(10, 20, 100, 50, "#ff0000"),
		element.NewText(30, 40, "hi", 24, "blue"),
	}
	id, err := s.Create(ctx, Canvas{Width: 800, Height: 600, Elements: els})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	c, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, DefaultName, c.Name)
	assert.Equal(t, 800.0, c.Width)
	assert.Equal(t, 600.0, c.Height)
	assert.Equal(t, els, c.Elements)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCreateRejectsInvalidSize(t *testing.T) {
	s := openTest(t)
	_, err := s.Create(context.Background(), Canvas{Width: 0, Height: 600})
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestGetMissing(t *testing.T) {
	s := openTest(t)
	_, err := s.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesState(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	id, err := s.Create(ctx, Canvas{Width: 400, Height: 300})
	require.NoError(t, err)
	before, _ := s.Get(ctx, id)

	name, err := s.Update(ctx, id, Canvas{
		Name:     "Poster",
		Width:    500,
		Height:   300,
		Elements: []element.Element{element.NewCircle(50, 50, 20, "green")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Poster", name)

	c, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Poster", c.Name)
	assert.Equal(t, 500.0, c.Width)
	require.Len(t, c.Elements, 1)
	assert.Equal(t, element.KindCircle, c.Elements[0].Kind())
	assert.True(t, c.UpdatedAt.After(before.UpdatedAt))

	_, err = s.Update(ctx, "missing", Canvas{Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddElementAppends(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	id, err := s.Create(ctx, Canvas{Width: 400, Height: 300})
	require.NoError(t, err)

	require.NoError(t, s.AddElement(ctx, id, element.NewRectangle(0, 0, 10, 10, "red")))
	require.NoError(t, s.AddElement(ctx, id, element.NewImage(5, 5, 20, 20, "http://x/y.png")))

	c, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.Elements, 2)
	assert.Equal(t, element.KindRectangle, c.Elements[0].Kind())
	assert.Equal(t, element.KindImage, c.Elements[1].Kind())

	assert.ErrorIs(t, s.AddElement(ctx, "missing", element.NewCircle(0, 0, 1, "")), ErrNotFound)
}

func TestListNewestFirstAndCount(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	first, _ := s.Create(ctx, Canvas{Name: "first", Width: 1, Height: 1})
	second, _ := s.Create(ctx, Canvas{Name: "second", Width: 1, Height: 1})

	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Summary{{ID: second, Name: "second"}, {ID: first, Name: "first"}}, list)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(list), n)
}

func TestRebind(t *testing.T) {
	pg, err := lookupDialect("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))
	assert.Equal(t, "x ?? $1", pg.rebind("x ?? ?"))

	my, err := lookupDialect("mysql")
	require.NoError(t, err)
	assert.Equal(t, "a = ?", my.rebind("a = ?"))

	_, err = lookupDialect("oracle")
	assert.Error(t, err)
}
