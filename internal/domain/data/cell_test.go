package data

import (
	"errors"
	"testing"

	domainerrors "github.com/leengari/stripetable/internal/domain/errors"
	"gotest.tools/v3/assert"
)

func TestArena_AllocGetSet(t *testing.T) {
	a := NewArena(4)
	id := a.Alloc("x")

	v, err := a.Get(id)
	assert.NilError(t, err)
	assert.Equal(t, v, any("x"))

	assert.NilError(t, a.Set(id, 7))
	cell, err := a.Cell(id)
	assert.NilError(t, err)
	assert.Equal(t, cell.ID, id)
	assert.Equal(t, cell.Element, any(7))
	assert.Equal(t, a.Len(), 1)
}

func TestArena_FreeRecyclesIDs(t *testing.T) {
	a := NewArena(0)
	first := a.Alloc(1)
	a.Alloc(2)

	a.Free(first)
	assert.Equal(t, a.Len(), 1)

	_, err := a.Get(first)
	assert.Assert(t, errors.Is(err, domainerrors.ErrCellNotFound))

	reused := a.Alloc(3)
	assert.Equal(t, reused, first)
	assert.Equal(t, a.Len(), 2)
}

func TestArena_UnknownID(t *testing.T) {
	a := NewArena(0)
	err := a.Set(CellID(5), "v")
	assert.Assert(t, errors.Is(err, domainerrors.ErrCellNotFound))

	// no panic
	a.Free(CellID(-3))
}

func TestArena_Clone(t *testing.T) {
	a := NewArena(0)
	id := a.Alloc("orig")
	c := a.Clone()
	assert.NilError(t, c.Set(id, "changed"))

	v, _ := a.Get(id)
	assert.Equal(t, v, any("orig"))
}
