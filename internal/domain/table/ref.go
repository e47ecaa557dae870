package table

import (
	"fmt"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/util/types"
)

// ColumnRef points at one column of one table
type ColumnRef struct {
	Table *Table
	Index int
}

// Col references column i of t. Bounds are checked by the consumer.
func (t *Table) Col(i int) ColumnRef {
	return ColumnRef{Table: t, Index: i}
}

// ColNamed references the column titled title
func (t *Table) ColNamed(title string) (ColumnRef, error) {
	i, err := t.ColumnIndex(title)
	if err != nil {
		return ColumnRef{}, err
	}
	return ColumnRef{Table: t, Index: i}, nil
}

// IsZero reports whether the reference points at nothing
func (r ColumnRef) IsZero() bool {
	return r.Table == nil
}

// Validate checks that the reference names an existing column
func (r ColumnRef) Validate(op string) error {
	if r.Table == nil {
		return errors.NewNilArgument(op, "column")
	}
	if err := errors.CheckIndex("column", r.Index, r.Table.ColumnCount()); err != nil {
		return &errors.ArgumentError{Op: op, Argument: "column", Err: err}
	}
	return nil
}

// Title returns the column title rendered as a string, or "#<index>" when untitled
func (r ColumnRef) Title() string {
	if r.Table != nil {
		if title, err := r.Table.ColumnTitle(r.Index); err == nil && title != nil {
			return types.String(title)
		}
	}
	return fmt.Sprintf("#%d", r.Index)
}

// String renders the reference as "table.title"
func (r ColumnRef) String() string {
	if r.Table == nil {
		return "<nil>"
	}
	if name := r.Table.Name(); name != "" {
		return name + "." + r.Title()
	}
	return r.Title()
}
