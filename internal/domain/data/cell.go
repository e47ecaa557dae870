package data

import (
	"github.com/leengari/stripetable/internal/domain/errors"
)

// CellID is the stable handle of a cell inside an Arena.
// Rows and columns refer to cells only through ids.
type CellID int

// NoCell is returned when no cell applies
const NoCell CellID = -1

// Cell is a read view of one arena slot
type Cell struct {
	ID      CellID
	Element any
}

// Arena owns every cell value of one table.
// Freed ids are reused by later allocations.
type Arena struct {
	values []any
	live   []bool
	free   []CellID
}

// NewArena creates an arena with room for capacity cells
func NewArena(capacity int) *Arena {
	return &Arena{
		values: make([]any, 0, capacity),
		live:   make([]bool, 0, capacity),
	}
}

// Alloc stores v and returns its id
func (a *Arena) Alloc(v any) CellID {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.values[id] = v
		a.live[id] = true
		return id
	}
	a.values = append(a.values, v)
	a.live = append(a.live, true)
	return CellID(len(a.values) - 1)
}

// Get returns the element of a live cell
func (a *Arena) Get(id CellID) (any, error) {
	if !a.valid(id) {
		return nil, &errors.CellNotFoundError{Row: -1, Column: -1, CellID: int(id)}
	}
	return a.values[id], nil
}

// Cell returns the view of a live cell
func (a *Arena) Cell(id CellID) (Cell, error) {
	v, err := a.Get(id)
	if err != nil {
		return Cell{ID: NoCell}, err
	}
	return Cell{ID: id, Element: v}, nil
}

// Set replaces the element of a live cell
func (a *Arena) Set(id CellID, v any) error {
	if !a.valid(id) {
		return &errors.CellNotFoundError{Row: -1, Column: -1, CellID: int(id)}
	}
	a.values[id] = v
	return nil
}

// Free releases a cell. Freeing an unknown id is a no-op.
func (a *Arena) Free(id CellID) {
	if !a.valid(id) {
		return
	}
	a.values[id] = nil
	a.live[id] = false
	a.free = append(a.free, id)
}

// Len is the number of live cells
func (a *Arena) Len() int {
	return len(a.values) - len(a.free)
}

// Clone copies the arena; ids stay the same in the copy
func (a *Arena) Clone() *Arena {
	c := &Arena{
		values: make([]any, len(a.values)),
		live:   make([]bool, len(a.live)),
		free:   make([]CellID, len(a.free)),
	}
	copy(c.values, a.values)
	copy(c.live, a.live)
	copy(c.free, a.free)
	return c
}

func (a *Arena) valid(id CellID) bool {
	return id >= 0 && int(id) < len(a.values) && a.live[id]
}
