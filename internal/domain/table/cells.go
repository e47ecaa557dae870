package table

import (
	"github.com/leengari/stripetable/internal/domain/data"
	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/stripe"
	"github.com/leengari/stripetable/internal/util/types"
)

// Cell returns the element at (row, col)
func (t *Table) Cell(row, col int) (any, error) {
	t.RLock()
	defer t.RUnlock()
	return t.cellUnsafe(row, col)
}

// SetCell replaces the element at (row, col)
func (t *Table) SetCell(row, col int, v any) error {
	t.Lock()
	defer t.Unlock()
	id, err := t.stripes.Resolver().ResolveCell(row, col)
	if err != nil {
		return err
	}
	return t.arena.Set(id, v)
}

// ResolveCell returns the shared cell at the intersection of a row and a column
func (t *Table) ResolveCell(row, col int) (data.Cell, error) {
	t.RLock()
	defer t.RUnlock()
	id, err := t.stripes.Resolver().ResolveCell(row, col)
	if err != nil {
		return data.Cell{ID: data.NoCell}, err
	}
	return t.arena.Cell(id)
}

// Row returns the values of row i in column order
func (t *Table) Row(i int) ([]any, error) {
	t.RLock()
	defer t.RUnlock()
	return t.stripeValuesUnsafe(stripe.Row, i)
}

// Column returns the values of column i in row order
func (t *Table) Column(i int) ([]any, error) {
	t.RLock()
	defer t.RUnlock()
	return t.stripeValuesUnsafe(stripe.Column, i)
}

// Rows returns a snapshot of every row's values
func (t *Table) Rows() [][]any {
	t.RLock()
	defer t.RUnlock()
	rows := make([][]any, t.stripes.Rows().Len())
	for i := range rows {
		// i is in range while the lock is held
		rows[i], _ = t.stripeValuesUnsafe(stripe.Row, i)
	}
	return rows
}

// RowTitle returns the title of row i (nil when untitled)
func (t *Table) RowTitle(i int) (any, error) {
	t.RLock()
	defer t.RUnlock()
	return t.titleUnsafe(stripe.Row, i)
}

// SetRowTitle labels row i
func (t *Table) SetRowTitle(i int, title any) error {
	t.Lock()
	defer t.Unlock()
	return t.setTitleUnsafe(stripe.Row, i, title)
}

// ColumnTitle returns the title of column i (nil when untitled)
func (t *Table) ColumnTitle(i int) (any, error) {
	t.RLock()
	defer t.RUnlock()
	return t.titleUnsafe(stripe.Column, i)
}

// SetColumnTitle labels column i
func (t *Table) SetColumnTitle(i int, title any) error {
	t.Lock()
	defer t.Unlock()
	return t.setTitleUnsafe(stripe.Column, i, title)
}

// SetColumnTitles labels the first len(titles) columns, adding columns if needed
func (t *Table) SetColumnTitles(titles ...any) error {
	t.Lock()
	defer t.Unlock()
	for t.stripes.Columns().Len() < len(titles) {
		if err := t.insertStripeUnsafe(stripe.Column, t.stripes.Columns().Len(), nil); err != nil {
			return err
		}
	}
	for i, title := range titles {
		if err := t.setTitleUnsafe(stripe.Column, i, title); err != nil {
			return err
		}
	}
	return nil
}

// RowTitles returns every row title in order
func (t *Table) RowTitles() []any {
	t.RLock()
	defer t.RUnlock()
	return t.stripes.Rows().Titles()
}

// ColumnTitles returns every column title in order
func (t *Table) ColumnTitles() []any {
	t.RLock()
	defer t.RUnlock()
	return t.stripes.Columns().Titles()
}

// HasRowTitles reports whether any row is titled
func (t *Table) HasRowTitles() bool {
	t.RLock()
	defer t.RUnlock()
	return t.stripes.Rows().HasTitles()
}

// HasColumnTitles reports whether any column is titled
func (t *Table) HasColumnTitles() bool {
	t.RLock()
	defer t.RUnlock()
	return t.stripes.Columns().HasTitles()
}

// ColumnIndex finds the first column whose title renders as title
func (t *Table) ColumnIndex(title string) (int, error) {
	t.RLock()
	defer t.RUnlock()
	return t.columnIndexUnsafe(title)
}

func (t *Table) columnIndexUnsafe(title string) (int, error) {
	for i, s := range t.stripes.Columns().All() {
		if s.Title != nil && types.String(s.Title) == title {
			return i, nil
		}
	}
	return -1, &errors.ColumnNotFoundError{TableName: t.name, ColumnName: title}
}

// cellUnsafe resolves and reads one cell
// IMPORTANT: Must be called while holding a lock
func (t *Table) cellUnsafe(row, col int) (any, error) {
	id, err := t.stripes.Resolver().ResolveCell(row, col)
	if err != nil {
		return nil, err
	}
	return t.arena.Get(id)
}

func (t *Table) stripeValuesUnsafe(kind stripe.StripeType, i int) ([]any, error) {
	s, err := t.stripes.Stripe(kind, i)
	if err != nil {
		return nil, err
	}
	values := make([]any, s.Len())
	for pos, id := range s.Cells {
		v, err := t.arena.Get(id)
		if err != nil {
			return nil, err
		}
		values[pos] = v
	}
	return values, nil
}

func (t *Table) titleUnsafe(kind stripe.StripeType, i int) (any, error) {
	s, err := t.stripes.Stripe(kind, i)
	if err != nil {
		return nil, err
	}
	return s.Title, nil
}

func (t *Table) setTitleUnsafe(kind stripe.StripeType, i int, title any) error {
	s, err := t.stripes.Stripe(kind, i)
	if err != nil {
		return err
	}
	s.Title = title
	return nil
}
