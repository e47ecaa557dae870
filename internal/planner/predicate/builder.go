package predicate

import (
	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
)

// The constructors below fail fast: a missing or out-of-range column is an
// ArgumentError, never a silent "match everything" filter.

// NewColumnValueEquals builds an equality filter
func NewColumnValueEquals(col table.ColumnRef, value any) (Predicate, error) {
	if err := col.Validate("ColumnValueEquals"); err != nil {
		return nil, err
	}
	return &ColumnValueEquals{Column: col, Value: value}, nil
}

// NewColumnValueIsIn builds a set-membership filter. An empty set matches nothing.
func NewColumnValueIsIn(col table.ColumnRef, values ...any) (Predicate, error) {
	if err := col.Validate("ColumnValueIsIn"); err != nil {
		return nil, err
	}
	return &ColumnValueIsIn{Column: col, Values: values}, nil
}

// NewColumnValueIsBetween builds a closed-range filter
func NewColumnValueIsBetween(col table.ColumnRef, from, to any) (Predicate, error) {
	if err := col.Validate("ColumnValueIsBetween"); err != nil {
		return nil, err
	}
	if from == nil {
		return nil, errors.NewNilArgument("ColumnValueIsBetween", "from")
	}
	if to == nil {
		return nil, errors.NewNilArgument("ColumnValueIsBetween", "to")
	}
	return &ColumnValueIsBetween{Column: col, From: from, To: to}, nil
}

// NewEqualColumns builds a cross-column equality, used to join tables
func NewEqualColumns(left, right table.ColumnRef) (Predicate, error) {
	if err := left.Validate("EqualColumns"); err != nil {
		return nil, err
	}
	if err := right.Validate("EqualColumns"); err != nil {
		return nil, err
	}
	return &EqualColumns{Left: left, Right: right}, nil
}

// NewFunc wraps a row function over t
func NewFunc(t *table.Table, fn func(row []any) bool) (Predicate, error) {
	if t == nil {
		return nil, errors.NewNilArgument("Func", "table")
	}
	if fn == nil {
		return nil, errors.NewNilArgument("Func", "fn")
	}
	return &Func{Table: t, Fn: fn}, nil
}

// And matches when every operand matches
func And(preds ...Predicate) (Predicate, error) {
	if err := checkOperands("And", preds); err != nil {
		return nil, err
	}
	return &logical{op: "AND", operands: preds}, nil
}

// Or matches when any operand matches
func Or(preds ...Predicate) (Predicate, error) {
	if err := checkOperands("Or", preds); err != nil {
		return nil, err
	}
	return &logical{op: "OR", operands: preds}, nil
}

// Not inverts p
func Not(p Predicate) (Predicate, error) {
	if p == nil {
		return nil, errors.NewNilArgument("Not", "predicate")
	}
	return &not{inner: p}, nil
}

// Must panics on a construction error; for fixed predicates in tests and
// static setup
func Must(p Predicate, err error) Predicate {
	if err != nil {
		panic(err)
	}
	return p
}

func checkOperands(op string, preds []Predicate) error {
	if len(preds) == 0 {
		return &errors.ArgumentError{Op: op, Argument: "predicates", Reason: "at least one operand required", Err: errors.ErrNilArgument}
	}
	for _, p := range preds {
		if p == nil {
			return errors.NewNilArgument(op, "predicate")
		}
	}
	return nil
}

type logical struct {
	op       string
	operands []Predicate
}

func (l *logical) Evaluate(tu *Tuple) (bool, error) {
	for _, p := range l.operands {
		ok, err := p.Evaluate(tu)
		if err != nil {
			return false, err
		}
		if l.op == "AND" && !ok {
			return false, nil
		}
		if l.op == "OR" && ok {
			return true, nil
		}
	}
	return l.op == "AND", nil
}

func (l *logical) Tables() []*table.Table {
	var tables []*table.Table
	for _, p := range l.operands {
		tables = appendUnique(tables, p.Tables()...)
	}
	return tables
}

type not struct {
	inner Predicate
}

func (n *not) Evaluate(tu *Tuple) (bool, error) {
	ok, err := n.inner.Evaluate(tu)
	return !ok, err
}

func (n *not) Tables() []*table.Table {
	return n.inner.Tables()
}

func appendUnique(dst []*table.Table, src ...*table.Table) []*table.Table {
	for _, t := range src {
		found := false
		for _, d := range dst {
			if d == t {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, t)
		}
	}
	return dst
}
