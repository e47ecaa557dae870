package table

import (
	"github.com/leengari/stripetable/internal/domain/stripe"
)

// Reader is the read surface the query engine scans through
type Reader interface {
	RowCount() int
	ColumnCount() int
	Cell(row, col int) (any, error)
	RowTitle(i int) (any, error)
	ColumnTitle(i int) (any, error)
}

var (
	_ Reader = (*Table)(nil)
	_ Reader = unlockedReader{}
)

// Unlocked returns a Reader that reads without taking the table lock.
// IMPORTANT: Only use it while you hold RLock or Lock on the table!
func (t *Table) Unlocked() Reader {
	return unlockedReader{t: t}
}

type unlockedReader struct {
	t *Table
}

func (u unlockedReader) RowCount() int    { return u.t.stripes.Rows().Len() }
func (u unlockedReader) ColumnCount() int { return u.t.stripes.Columns().Len() }

func (u unlockedReader) Cell(row, col int) (any, error) {
	return u.t.cellUnsafe(row, col)
}

func (u unlockedReader) RowTitle(i int) (any, error) {
	return u.t.titleUnsafe(stripe.Row, i)
}

func (u unlockedReader) ColumnTitle(i int) (any, error) {
	return u.t.titleUnsafe(stripe.Column, i)
}
