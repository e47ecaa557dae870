package stripe

import (
	"slices"

	"github.com/leengari/stripetable/internal/domain/data"
)

// StripeType tells rows and columns apart
type StripeType int

const (
	Row StripeType = iota
	Column
)

// String returns the lower-case name used in error messages
func (st StripeType) String() string {
	switch st {
	case Row:
		return "row"
	case Column:
		return "column"
	default:
		return "unknown"
	}
}

// Other returns the crossing stripe type
func (st StripeType) Other() StripeType {
	if st == Row {
		return Column
	}
	return Row
}

// Stripe is one row or one column: an optional title and an ordered list of
// cell ids. A cell id held here is also held by exactly one crossing stripe.
type Stripe struct {
	Title any
	Cells []data.CellID
}

// NewStripe creates an untitled stripe over the given cells
func NewStripe(cells ...data.CellID) *Stripe {
	return &Stripe{Cells: cells}
}

// Len is the number of cells in the stripe
func (s *Stripe) Len() int {
	return len(s.Cells)
}

// Contains reports whether id belongs to this stripe
func (s *Stripe) Contains(id data.CellID) bool {
	return slices.Contains(s.Cells, id)
}

// IndexOf returns the position of id, or -1
func (s *Stripe) IndexOf(id data.CellID) int {
	return slices.Index(s.Cells, id)
}

// InsertCell places id at position i (i == Len appends)
func (s *Stripe) InsertCell(i int, id data.CellID) {
	s.Cells = slices.Insert(s.Cells, i, id)
}

// RemoveCell drops the cell at position i and returns its id
func (s *Stripe) RemoveCell(i int) data.CellID {
	id := s.Cells[i]
	s.Cells = slices.Delete(s.Cells, i, i+1)
	return id
}

// SwapCells exchanges two positions
func (s *Stripe) SwapCells(i, j int) {
	s.Cells[i], s.Cells[j] = s.Cells[j], s.Cells[i]
}

// Clone copies the stripe; cell ids are shared with the original arena layout
func (s *Stripe) Clone() *Stripe {
	return &Stripe{Title: s.Title, Cells: slices.Clone(s.Cells)}
}
