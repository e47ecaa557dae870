package predicate

import (
	"slices"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// Predicate is a boolean filter over a tuple of bound rows
type Predicate interface {
	// Evaluate reports whether the tuple matches
	Evaluate(tu *Tuple) (bool, error)
	// Tables lists every table the predicate reads; it can only be evaluated
	// once all of them are bound
	Tables() []*table.Table
}

// ColumnValueEquals matches rows whose column equals Value
type ColumnValueEquals struct {
	Column table.ColumnRef
	Value  any
}

func (p *ColumnValueEquals) Evaluate(tu *Tuple) (bool, error) {
	v, err := tu.Value(p.Column)
	if err != nil {
		return false, err
	}
	return types.Equal(v, p.Value), nil
}

func (p *ColumnValueEquals) Tables() []*table.Table {
	return []*table.Table{p.Column.Table}
}

// ColumnValueIsIn matches rows whose column equals any of Values
type ColumnValueIsIn struct {
	Column table.ColumnRef
	Values []any
}

func (p *ColumnValueIsIn) Evaluate(tu *Tuple) (bool, error) {
	v, err := tu.Value(p.Column)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(p.Values, func(candidate any) bool {
		return types.Equal(v, candidate)
	}), nil
}

func (p *ColumnValueIsIn) Tables() []*table.Table {
	return []*table.Table{p.Column.Table}
}

// ColumnValueIsBetween matches rows whose column lies in the closed range
// [From, To]. Cells that cannot be ordered against the bounds do not match.
type ColumnValueIsBetween struct {
	Column table.ColumnRef
	From   any
	To     any
}

func (p *ColumnValueIsBetween) Evaluate(tu *Tuple) (bool, error) {
	v, err := tu.Value(p.Column)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	lower, err := types.Compare(v, p.From)
	if err != nil {
		return false, nil
	}
	upper, err := types.Compare(v, p.To)
	if err != nil {
		return false, nil
	}
	return lower >= 0 && upper <= 0, nil
}

func (p *ColumnValueIsBetween) Tables() []*table.Table {
	return []*table.Table{p.Column.Table}
}

// EqualColumns matches when two columns hold equal values; it is the join
// condition. nil never equals nil here, as in SQL.
type EqualColumns struct {
	Left  table.ColumnRef
	Right table.ColumnRef
}

func (p *EqualColumns) Evaluate(tu *Tuple) (bool, error) {
	left, err := tu.Value(p.Left)
	if err != nil {
		return false, err
	}
	right, err := tu.Value(p.Right)
	if err != nil {
		return false, err
	}
	if left == nil || right == nil {
		return false, nil
	}
	return types.Equal(left, right), nil
}

func (p *EqualColumns) Tables() []*table.Table {
	if p.Left.Table == p.Right.Table {
		return []*table.Table{p.Left.Table}
	}
	return []*table.Table{p.Left.Table, p.Right.Table}
}

// Func wraps an arbitrary function over a single table row
type Func struct {
	Table *table.Table
	Fn    func(row []any) bool
}

func (p *Func) Evaluate(tu *Tuple) (bool, error) {
	r, ok := tu.position(p.Table)
	if !ok {
		return false, nil
	}
	reader := tu.readers[r]
	row := make([]any, reader.ColumnCount())
	for c := range row {
		v, err := reader.Cell(tu.rows[r], c)
		if err != nil {
			return false, err
		}
		row[c] = v
	}
	return p.Fn(row), nil
}

func (p *Func) Tables() []*table.Table {
	return []*table.Table{p.Table}
}
