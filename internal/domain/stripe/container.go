package stripe

import (
	"github.com/leengari/stripetable/internal/domain/data"
	"github.com/leengari/stripetable/internal/domain/errors"
)

// Container owns the row list and the column list of one table and routes
// lookups by stripe type
type Container struct {
	rows    *StripeList
	columns *StripeList
}

// NewContainer creates an empty container
func NewContainer() *Container {
	return &Container{
		rows:    NewStripeList(Row),
		columns: NewStripeList(Column),
	}
}

// List returns the list for the given stripe type
func (c *Container) List(kind StripeType) *StripeList {
	if kind == Row {
		return c.rows
	}
	return c.columns
}

// Rows returns the row list
func (c *Container) Rows() *StripeList { return c.rows }

// Columns returns the column list
func (c *Container) Columns() *StripeList { return c.columns }

// Stripe fetches one stripe by type and index
func (c *Container) Stripe(kind StripeType, i int) (*Stripe, error) {
	return c.List(kind).Get(i)
}

// Resolver returns a CellResolver over this container
func (c *Container) Resolver() *CellResolver {
	return &CellResolver{container: c}
}

// Clone deep-copies both lists
func (c *Container) Clone() *Container {
	return &Container{rows: c.rows.Clone(), columns: c.columns.Clone()}
}

// CellResolver finds the single cell shared by a row and a column
type CellResolver struct {
	container *Container
}

// ResolveCell fetches the row and the column independently and returns the id
// of the cell both contain. The positional candidate is tried first; the full
// scan only runs when stripes were reordered without their cells.
func (r *CellResolver) ResolveCell(rowIndex, colIndex int) (data.CellID, error) {
	row, err := r.container.rows.Get(rowIndex)
	if err != nil {
		return data.NoCell, err
	}
	col, err := r.container.columns.Get(colIndex)
	if err != nil {
		return data.NoCell, err
	}

	if colIndex < row.Len() && rowIndex < col.Len() && row.Cells[colIndex] == col.Cells[rowIndex] {
		return row.Cells[colIndex], nil
	}

	for _, id := range row.Cells {
		if col.Contains(id) {
			return id, nil
		}
	}

	return data.NoCell, &errors.CellNotFoundError{Row: rowIndex, Column: colIndex, CellID: -1}
}
