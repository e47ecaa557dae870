package predicate_test

import (
	stderrors "errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/planner/predicate"
	"github.com/leengari/stripetable/internal/query/operations/testutil"
)

func matching(t *testing.T, tbl *table.Table, p predicate.Predicate) []int {
	t.Helper()
	var rows []int
	for r := 0; r < tbl.RowCount(); r++ {
		ok, err := p.Evaluate(predicate.Single(tbl, r))
		assert.NilError(t, err)
		if ok {
			rows = append(rows, r)
		}
	}
	return rows
}

func TestColumnValueEquals(t *testing.T) {
	users := testutil.CreateUsersTable()

	p, err := predicate.NewColumnValueEquals(users.Col(1), "bob")
	assert.NilError(t, err)
	assert.DeepEqual(t, matching(t, users, p), []int{1})

	// plain int matches the stored int64
	p, err = predicate.NewColumnValueEquals(users.Col(0), 3)
	assert.NilError(t, err)
	assert.DeepEqual(t, matching(t, users, p), []int{2})
}

func TestColumnValueIsIn(t *testing.T) {
	letters := testutil.CreateLettersTable()

	p, err := predicate.NewColumnValueIsIn(letters.Col(0), "b", "e")
	assert.NilError(t, err)
	assert.DeepEqual(t, matching(t, letters, p), []int{0, 2, 6, 7})

	empty, err := predicate.NewColumnValueIsIn(letters.Col(0))
	assert.NilError(t, err)
	assert.Assert(t, matching(t, letters, empty) == nil)
}

func TestColumnValueIsBetween(t *testing.T) {
	orders := testutil.CreateOrdersTable()

	p, err := predicate.NewColumnValueIsBetween(orders.Col(3), 25.5, 100)
	assert.NilError(t, err)
	assert.DeepEqual(t, matching(t, orders, p), []int{1, 2})

	// incomparable bounds never match
	p, err = predicate.NewColumnValueIsBetween(orders.Col(3), "a", "z")
	assert.NilError(t, err)
	assert.Assert(t, matching(t, orders, p) == nil)
}

func TestFactories_FailFast(t *testing.T) {
	users := testutil.CreateUsersTable()

	tests := []struct {
		name  string
		build func() (predicate.Predicate, error)
		is    error
	}{
		{"zero column", func() (predicate.Predicate, error) {
			return predicate.NewColumnValueEquals(table.ColumnRef{}, 1)
		}, errors.ErrNilArgument},
		{"column out of range", func() (predicate.Predicate, error) {
			return predicate.NewColumnValueIsIn(users.Col(9), 1)
		}, errors.ErrOutOfRange},
		{"nil lower bound", func() (predicate.Predicate, error) {
			return predicate.NewColumnValueIsBetween(users.Col(0), nil, 3)
		}, errors.ErrNilArgument},
		{"join column missing", func() (predicate.Predicate, error) {
			return predicate.NewEqualColumns(users.Col(0), table.ColumnRef{})
		}, errors.ErrNilArgument},
		{"empty and", func() (predicate.Predicate, error) {
			return predicate.And()
		}, errors.ErrNilArgument},
		{"nil or operand", func() (predicate.Predicate, error) {
			return predicate.Or(nil)
		}, errors.ErrNilArgument},
		{"nil not", func() (predicate.Predicate, error) {
			return predicate.Not(nil)
		}, errors.ErrNilArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			assert.Assert(t, p == nil)
			assert.Assert(t, stderrors.Is(err, tt.is), "got %v", err)

			var argErr *errors.ArgumentError
			assert.Assert(t, stderrors.As(err, &argErr))
		})
	}
}

func TestComposition(t *testing.T) {
	users := testutil.CreateUsersTable()
	isAlice := predicate.Must(predicate.NewColumnValueEquals(users.Col(1), "alice"))
	isBob := predicate.Must(predicate.NewColumnValueEquals(users.Col(1), "bob"))

	either := predicate.Must(predicate.Or(isAlice, isBob))
	assert.DeepEqual(t, matching(t, users, either), []int{0, 1})

	both := predicate.Must(predicate.And(isAlice, isBob))
	assert.Assert(t, matching(t, users, both) == nil)

	neither := predicate.Must(predicate.Not(either))
	assert.DeepEqual(t, matching(t, users, neither), []int{2})
	assert.DeepEqual(t, neither.Tables(), []*table.Table{users})
}

func TestEqualColumns_JoinTuple(t *testing.T) {
	users := testutil.CreateUsersTable()
	orders := testutil.CreateOrdersTable()

	p, err := predicate.NewEqualColumns(users.Col(0), orders.Col(1))
	assert.NilError(t, err)
	assert.Equal(t, len(p.Tables()), 2)

	tu := predicate.NewTuple()
	tu.Bind(users, users, 0)
	tu.Bind(orders, orders, 1)
	ok, err := p.Evaluate(tu)
	assert.NilError(t, err)
	assert.Assert(t, ok)

	tu.Bind(orders, orders, 2)
	ok, err = p.Evaluate(tu)
	assert.NilError(t, err)
	assert.Assert(t, !ok)

	tu.Unbind()
	assert.Assert(t, !tu.Bound(orders))
	_, err = p.Evaluate(tu)
	assert.ErrorContains(t, err, "not bound")
}

func TestEqualColumns_NilNeverMatches(t *testing.T) {
	a := table.NewFromRows("a", [][]any{{nil}})
	b := table.NewFromRows("b", [][]any{{nil}})

	p := predicate.Must(predicate.NewEqualColumns(a.Col(0), b.Col(0)))
	tu := predicate.NewTuple()
	tu.Bind(a, a, 0)
	tu.Bind(b, b, 0)
	ok, err := p.Evaluate(tu)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestFunc(t *testing.T) {
	orders := testutil.CreateOrdersTable()
	p, err := predicate.NewFunc(orders, func(row []any) bool {
		return row[2] == "Mouse"
	})
	assert.NilError(t, err)
	assert.DeepEqual(t, matching(t, orders, p), []int{1})

	_, err = predicate.NewFunc(orders, nil)
	assert.Assert(t, stderrors.Is(err, errors.ErrNilArgument))
}
