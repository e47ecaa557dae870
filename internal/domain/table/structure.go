package table

import (
	"log/slog"

	"github.com/leengari/stripetable/internal/domain/data"
	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/stripe"
)

// AddRow appends a row. Missing values are nil; extra values widen the table
// with new columns filled with nil for the existing rows.
func (t *Table) AddRow(values ...any) error {
	t.Lock()
	defer t.Unlock()
	return t.insertStripeUnsafe(stripe.Row, t.stripes.Rows().Len(), values)
}

// InsertRow places a row at index i, shifting later rows down
func (t *Table) InsertRow(i int, values ...any) error {
	t.Lock()
	defer t.Unlock()
	return t.insertStripeUnsafe(stripe.Row, i, values)
}

// RemoveRow deletes row i and frees its cells
func (t *Table) RemoveRow(i int) error {
	t.Lock()
	defer t.Unlock()
	return t.removeStripeUnsafe(stripe.Row, i)
}

// SwapRows exchanges rows i and j
func (t *Table) SwapRows(i, j int) error {
	t.Lock()
	defer t.Unlock()
	return t.swapStripesUnsafe(stripe.Row, i, j)
}

// AddColumn appends a column, symmetric to AddRow
func (t *Table) AddColumn(values ...any) error {
	t.Lock()
	defer t.Unlock()
	return t.insertStripeUnsafe(stripe.Column, t.stripes.Columns().Len(), values)
}

// InsertColumn places a column at index i
func (t *Table) InsertColumn(i int, values ...any) error {
	t.Lock()
	defer t.Unlock()
	return t.insertStripeUnsafe(stripe.Column, i, values)
}

// RemoveColumn deletes column i and frees its cells
func (t *Table) RemoveColumn(i int) error {
	t.Lock()
	defer t.Unlock()
	return t.removeStripeUnsafe(stripe.Column, i)
}

// SwapColumns exchanges columns i and j
func (t *Table) SwapColumns(i, j int) error {
	t.Lock()
	defer t.Unlock()
	return t.swapStripesUnsafe(stripe.Column, i, j)
}

// Clear removes every row and column
func (t *Table) Clear() {
	t.Lock()
	defer t.Unlock()
	t.clearUnsafe()
}

func (t *Table) clearUnsafe() {
	t.arena = data.NewArena(0)
	t.stripes = stripe.NewContainer()
}

// insertStripeUnsafe creates a stripe of the given kind at index i.
// IMPORTANT: Must be called while holding write lock!
func (t *Table) insertStripeUnsafe(kind stripe.StripeType, i int, values []any) error {
	list := t.stripes.List(kind)
	crossing := t.stripes.List(kind.Other())

	if err := errors.CheckIndex(kind.String(), i, list.Len()+1); err != nil {
		return err
	}

	// Widen the crossing direction first so every value has a stripe to land in
	for crossing.Len() < len(values) {
		if err := t.insertStripeUnsafe(kind.Other(), crossing.Len(), nil); err != nil {
			return err
		}
	}

	st := stripe.NewStripe()
	for pos, other := range crossing.All() {
		var v any
		if pos < len(values) {
			v = values[pos]
		}
		id := t.arena.Alloc(v)
		st.Cells = append(st.Cells, id)
		other.InsertCell(i, id)
	}

	if err := list.Insert(i, st); err != nil {
		return err
	}

	t.logger.Debug("stripe inserted",
		slog.String("table", t.name),
		slog.String("kind", kind.String()),
		slog.Int("index", i),
		slog.Int("cells", st.Len()),
	)
	return nil
}

// removeStripeUnsafe deletes the stripe and the matching cell from every
// crossing stripe.
// IMPORTANT: Must be called while holding write lock!
func (t *Table) removeStripeUnsafe(kind stripe.StripeType, i int) error {
	removed, err := t.stripes.List(kind).Remove(i)
	if err != nil {
		return err
	}
	for _, other := range t.stripes.List(kind.Other()).All() {
		other.RemoveCell(i)
	}
	for _, id := range removed.Cells {
		t.arena.Free(id)
	}
	return nil
}

// swapStripesUnsafe keeps the crossing stripes' cell order in step
// IMPORTANT: Must be called while holding write lock!
func (t *Table) swapStripesUnsafe(kind stripe.StripeType, i, j int) error {
	if err := t.stripes.List(kind).Swap(i, j); err != nil {
		return err
	}
	for _, other := range t.stripes.List(kind.Other()).All() {
		other.SwapCells(i, j)
	}
	return nil
}
