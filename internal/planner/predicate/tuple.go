package predicate

import (
	"fmt"

	"github.com/leengari/stripetable/internal/domain/table"
)

// Tuple binds each participating table to one row position.
// A select binds a single table; a join binds one row per joined table.
type Tuple struct {
	tables  []*table.Table
	readers []table.Reader
	rows    []int
}

// NewTuple creates an empty tuple
func NewTuple() *Tuple {
	return &Tuple{}
}

// Single binds one table row; handy for filtering a plain table
func Single(t *table.Table, row int) *Tuple {
	tu := NewTuple()
	tu.Bind(t, t, row)
	return tu
}

// Bind sets the row of t, read through r. Rebinding a table replaces its row.
func (tu *Tuple) Bind(t *table.Table, r table.Reader, row int) {
	for i, bound := range tu.tables {
		if bound == t {
			tu.readers[i] = r
			tu.rows[i] = row
			return
		}
	}
	tu.tables = append(tu.tables, t)
	tu.readers = append(tu.readers, r)
	tu.rows = append(tu.rows, row)
}

// Unbind removes the last bound table
func (tu *Tuple) Unbind() {
	n := len(tu.tables)
	if n == 0 {
		return
	}
	tu.tables = tu.tables[:n-1]
	tu.readers = tu.readers[:n-1]
	tu.rows = tu.rows[:n-1]
}

// Bound reports whether t has a row in this tuple
func (tu *Tuple) Bound(t *table.Table) bool {
	_, ok := tu.position(t)
	return ok
}

// Row returns the row bound for t
func (tu *Tuple) Row(t *table.Table) (int, bool) {
	i, ok := tu.position(t)
	if !ok {
		return -1, false
	}
	return tu.rows[i], true
}

// Value reads the referenced column of the bound row
func (tu *Tuple) Value(ref table.ColumnRef) (any, error) {
	i, ok := tu.position(ref.Table)
	if !ok {
		return nil, fmt.Errorf("table for column %s is not bound", ref)
	}
	return tu.readers[i].Cell(tu.rows[i], ref.Index)
}

func (tu *Tuple) position(t *table.Table) (int, bool) {
	for i, bound := range tu.tables {
		if bound == t {
			return i, true
		}
	}
	return -1, false
}
