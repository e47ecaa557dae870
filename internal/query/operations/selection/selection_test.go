package selection_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/planner/predicate"
	"github.com/leengari/stripetable/internal/query/indexing"
	"github.com/leengari/stripetable/internal/query/operations/projection"
	"github.com/leengari/stripetable/internal/query/operations/selection"
	"github.com/leengari/stripetable/internal/query/operations/testutil"
)

func TestSelect_All(t *testing.T) {
	users := testutil.CreateUsersTable()

	result, err := selection.From(users).Execute()
	assert.NilError(t, err)
	assert.Assert(t, table.EqualContent(result, users))
	assert.Equal(t, result.Name(), "users")
	assert.DeepEqual(t, result.ColumnTitles(), []any{"id", "username", "email"})
	assert.Assert(t, result.ID() != users.ID())
}

func TestSelect_WhereAndColumns(t *testing.T) {
	orders := testutil.CreateOrdersTable()

	cheap := predicate.Must(predicate.NewColumnValueIsBetween(orders.Col(3), 0, 100))
	q := selection.From(orders).
		Where(cheap).
		Columns(orders.Col(2), orders.Col(3)).
		Named("cheap_orders")

	result, err := q.Execute()
	assert.NilError(t, err)
	assert.Equal(t, result.Name(), "cheap_orders")
	testutil.AssertRowCount(t, result.RowCount(), 2, "cheap orders")
	testutil.AssertColumnValues(t, result, 0, []any{"Mouse", "Keyboard"}, "products")
	testutil.AssertColumnExists(t, result, "amount", "cheap orders")
	testutil.AssertColumnNotExists(t, result, "user_id", "cheap orders")

	stats := q.Stats()
	assert.Equal(t, stats.RowsScanned, 3)
	assert.Equal(t, stats.RowsMatched, 2)
	assert.Assert(t, !stats.IndexUsed)
}

func TestSelect_NoMatchKeepsSelectedColumns(t *testing.T) {
	tbl := table.NewFromRows("grid", [][]any{{1, 2, 3}, {4, 5, 6}})
	none := predicate.Must(predicate.NewColumnValueEquals(tbl.Col(0), 99))

	result, err := selection.From(tbl).Where(none).Execute()
	assert.NilError(t, err)
	testutil.AssertRowCount(t, result.RowCount(), 0, "no match")
	testutil.AssertColumnCount(t, result.ColumnCount(), 3, "no match")

	result, err = selection.From(tbl).Where(none).Columns(tbl.Col(0), tbl.Col(2)).Execute()
	assert.NilError(t, err)
	testutil.AssertColumnCount(t, result.ColumnCount(), 2, "no match, projected")

	users := testutil.CreateUsersTable()
	nobody := predicate.Must(predicate.NewColumnValueEquals(users.Col(1), "mallory"))
	result, err = selection.From(users).Where(nobody).Columns(users.Col(1)).Execute()
	assert.NilError(t, err)
	assert.DeepEqual(t, result.ColumnTitles(), []any{"username"})
	testutil.AssertRowCount(t, result.RowCount(), 0, "no match, titled")
}

func TestSelect_KeepsRowTitles(t *testing.T) {
	tbl := table.NewFromRows("t", [][]any{{1}, {2}, {3}})
	for i, title := range []string{"r0", "r1", "r2"} {
		assert.NilError(t, tbl.SetRowTitle(i, title))
	}

	odd := predicate.Must(predicate.NewColumnValueIsIn(tbl.Col(0), 1, 3))
	result, err := selection.From(tbl).Where(odd).Execute()
	assert.NilError(t, err)
	assert.DeepEqual(t, result.RowTitles(), []any{"r0", "r2"})
	assert.Assert(t, !result.HasColumnTitles())
}

func TestSelect_InnerJoin(t *testing.T) {
	users := testutil.CreateUsersTable()
	orders := testutil.CreateOrdersTable()

	result, err := selection.From(users).
		Join(orders).
		OnEqual(users.Col(0), orders.Col(1)).
		Columns(users.Col(1), orders.Col(2)).
		Execute()
	assert.NilError(t, err)

	// charlie has no orders
	testutil.AssertRowCount(t, result.RowCount(), 3, "INNER JOIN")
	assert.DeepEqual(t, result.ColumnTitles(), []any{"users.username", "orders.product"})
	assert.DeepEqual(t, result.Rows(), [][]any{
		{"alice", "Laptop"},
		{"alice", "Mouse"},
		{"bob", "Keyboard"},
	})
}

func TestSelect_JoinWithFilterAndAlias(t *testing.T) {
	users := testutil.CreateUsersTable()
	orders := testutil.CreateOrdersTable()

	proj := projection.NewProjectionWithColumns()
	proj.AddColumn(users.Col(1), "buyer")
	proj.AddColumn(orders.Col(3), "")

	result, err := selection.From(users).
		Join(orders).
		OnEqual(users.Col(0), orders.Col(1)).
		Where(predicate.Must(predicate.NewColumnValueEquals(orders.Col(2), "Mouse"))).
		Project(proj).
		Execute()
	assert.NilError(t, err)
	assert.DeepEqual(t, result.ColumnTitles(), []any{"buyer", "orders.amount"})
	assert.DeepEqual(t, result.Rows(), [][]any{{"alice", 25.50}})
}

func TestSelect_ThreeWayJoin(t *testing.T) {
	users := testutil.CreateUsersTable()
	orders := testutil.CreateOrdersTable()
	products := table.NewFromRows("products", [][]any{
		{"Keyboard", "peripherals"},
		{"Laptop", "computers"},
	})
	assert.NilError(t, products.SetColumnTitles("name", "category"))

	result, err := selection.From(users).
		Join(orders).
		Join(products).
		OnEqual(users.Col(0), orders.Col(1)).
		OnEqual(orders.Col(2), products.Col(0)).
		Columns(users.Col(1), products.Col(1)).
		Execute()
	assert.NilError(t, err)
	assert.DeepEqual(t, result.Rows(), [][]any{
		{"alice", "computers"},
		{"bob", "peripherals"},
	})
}

func TestSelect_RejectsSelfJoin(t *testing.T) {
	users := testutil.CreateUsersTable()

	_, err := selection.From(users).Join(users).Execute()
	assert.Assert(t, stderrors.Is(err, errors.ErrUnsupportedOperation), "got %v", err)
}

func TestSelect_RejectsForeignPredicate(t *testing.T) {
	users := testutil.CreateUsersTable()
	orders := testutil.CreateOrdersTable()

	_, err := selection.From(users).
		Where(predicate.Must(predicate.NewColumnValueEquals(orders.Col(0), 1))).
		Execute()
	var argErr *errors.ArgumentError
	assert.Assert(t, stderrors.As(err, &argErr), "got %v", err)
}

func TestSelect_BuilderErrors(t *testing.T) {
	_, err := selection.From(nil).Execute()
	assert.Assert(t, stderrors.Is(err, errors.ErrNilArgument))

	users := testutil.CreateUsersTable()
	_, err = selection.From(users).Where(nil).Execute()
	assert.Assert(t, stderrors.Is(err, errors.ErrNilArgument))

	_, err = selection.From(users).OnEqual(users.Col(0), users.Col(9)).Execute()
	assert.Assert(t, stderrors.Is(err, errors.ErrOutOfRange))

	_, err = selection.From(users).Columns(users.Col(5)).Execute()
	assert.Assert(t, stderrors.Is(err, errors.ErrOutOfRange))
}

func TestSelect_UsesIndex(t *testing.T) {
	letters := testutil.CreateLettersTable()
	idx, err := indexing.NewFullScan(letters, 0)
	assert.NilError(t, err)

	q := selection.From(letters).
		Where(predicate.Must(predicate.NewColumnValueEquals(letters.Col(0), "b"))).
		UseIndex(idx)
	result, err := q.Execute()
	assert.NilError(t, err)
	testutil.AssertColumnValues(t, result, 0, []any{"b", "b"}, "index lookup")

	stats := q.Stats()
	assert.Assert(t, stats.IndexUsed)
	assert.Equal(t, stats.IndexCandidates, 2)
	assert.Equal(t, stats.RowsScanned, 2)
}

func TestSelect_RangeOnFullScanFallsBack(t *testing.T) {
	letters := testutil.CreateLettersTable()
	idx, err := indexing.NewFullScan(letters, 0)
	assert.NilError(t, err)

	q := selection.From(letters).
		Where(predicate.Must(predicate.NewColumnValueIsBetween(letters.Col(0), "b", "c"))).
		UseIndex(idx)
	result, err := q.Execute()
	assert.NilError(t, err)
	testutil.AssertColumnValues(t, result, 0, []any{"b", "b", "c"}, "fallback scan")
	assert.Assert(t, !q.Stats().IndexUsed)
	assert.Equal(t, q.Stats().RowsScanned, 8)
}

func TestSelect_SortedIndexRangeKeepsTableOrder(t *testing.T) {
	letters := testutil.CreateLettersTable()
	idx, err := indexing.NewSorted(letters, 0)
	assert.NilError(t, err)

	q := selection.From(letters).
		Where(predicate.Must(predicate.NewColumnValueIsBetween(letters.Col(0), "c", "e"))).
		UseIndex(idx)
	result, err := q.Execute()
	assert.NilError(t, err)
	// rows 3 (d), 5 (c), 6 (e), 7 (e)
	testutil.AssertColumnValues(t, result, 0, []any{"d", "c", "e", "e"}, "range lookup")
	assert.Assert(t, q.Stats().IndexUsed)
}

func TestSelect_IndexCandidatesAreRechecked(t *testing.T) {
	letters := testutil.CreateLettersTable()
	idx, err := indexing.NewFullScan(letters, 0)
	assert.NilError(t, err)

	// the index is stale after this write
	assert.NilError(t, letters.SetCell(0, 0, "z"))

	result, err := selection.From(letters).
		Where(predicate.Must(predicate.NewColumnValueEquals(letters.Col(0), "b"))).
		UseIndex(idx).
		Execute()
	assert.NilError(t, err)
	testutil.AssertRowCount(t, result.RowCount(), 1, "stale candidates")
}

func TestSelect_IndexOnOtherTableIgnored(t *testing.T) {
	letters := testutil.CreateLettersTable()
	other := testutil.CreateLettersTable()
	idx, err := indexing.NewFullScan(other, 0)
	assert.NilError(t, err)

	q := selection.From(letters).
		Where(predicate.Must(predicate.NewColumnValueEquals(letters.Col(0), "e"))).
		UseIndex(idx)
	result, err := q.Execute()
	assert.NilError(t, err)
	testutil.AssertRowCount(t, result.RowCount(), 2, "scan")
	assert.Assert(t, !q.Stats().IndexUsed)
}

func TestSelect_ContextCancelled(t *testing.T) {
	users := testutil.CreateUsersTable()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := selection.From(users).ExecuteContext(ctx)
	assert.Assert(t, stderrors.Is(err, context.Canceled))
}

func TestSelect_TableLockBlocksWriters(t *testing.T) {
	users := testutil.CreateUsersTable()
	orders := testutil.CreateOrdersTable()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			result, err := selection.From(users).
				Join(orders).
				OnEqual(users.Col(0), orders.Col(1)).
				WithTableLock(true).
				Execute()
			if !assert.Check(t, err) {
				return
			}
			// each result is a consistent snapshot: every order row is complete
			for _, row := range result.Rows() {
				assert.Check(t, len(row) == 7)
			}
		}()
		go func() {
			defer wg.Done()
			assert.Check(t, orders.AddRow(int64(100), int64(3), "Cable", 5.0))
		}()
	}
	wg.Wait()

	testutil.AssertRowCount(t, orders.RowCount(), 11, "orders after writes")
}
