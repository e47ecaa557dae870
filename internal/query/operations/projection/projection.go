package projection

import (
	"github.com/leengari/stripetable/internal/domain/table"
)

// Column is one projected column: a source column plus an optional alias
type Column struct {
	Ref   table.ColumnRef
	Alias string // Optional alias (e.g., "user_id" for "id AS user_id")
}

// Projection represents which columns to select from a query
// If SelectAll is true, every column of every participating table is returned
// Otherwise, only columns in Columns slice are returned
type Projection struct {
	Columns   []Column
	SelectAll bool
}

// NewProjection creates a new projection for selecting all columns
func NewProjection() *Projection {
	return &Projection{
		SelectAll: true,
		Columns:   []Column{},
	}
}

// NewProjectionWithColumns creates a projection for specific columns
func NewProjectionWithColumns(columns ...Column) *Projection {
	return &Projection{
		SelectAll: false,
		Columns:   columns,
	}
}

// Of builds a projection from plain column references
func Of(refs ...table.ColumnRef) *Projection {
	p := NewProjectionWithColumns()
	for _, ref := range refs {
		p.Columns = append(p.Columns, Column{Ref: ref})
	}
	return p
}

// AddColumn adds a column to the projection
func (p *Projection) AddColumn(ref table.ColumnRef, alias string) {
	p.Columns = append(p.Columns, Column{Ref: ref, Alias: alias})
	p.SelectAll = false
}

// Expand resolves SELECT * into explicit columns over tables, in table order
func (p *Projection) Expand(tables ...*table.Table) []Column {
	if p != nil && !p.SelectAll {
		return p.Columns
	}
	var cols []Column
	for _, t := range tables {
		for c := 0; c < t.ColumnCount(); c++ {
			cols = append(cols, Column{Ref: t.Col(c)})
		}
	}
	return cols
}
