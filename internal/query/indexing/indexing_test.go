package indexing_test

import (
	"errors"
	"testing"

	domainerrors "github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/query/indexing"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

// letters builds a one-column table holding b, a, b, d, f, c, e, e
func letters() *table.Table {
	t := table.New("letters")
	for _, v := range []string{"b", "a", "b", "d", "f", "c", "e", "e"} {
		_ = t.AddRow(v)
	}
	return t
}

func TestFullScan_ContainingElement(t *testing.T) {
	idx, err := indexing.NewFullScan(letters(), 0)
	assert.NilError(t, err)
	assert.Assert(t, idx.Valid())

	rows, err := idx.ContainingElement("b")
	assert.NilError(t, err)
	assert.Assert(t, cmp.Len(rows, 2))
	assert.Assert(t, cmp.Contains(rows, 0))
	assert.Assert(t, cmp.Contains(rows, 2))

	rows, err = idx.ContainingElement("z")
	assert.NilError(t, err)
	assert.Assert(t, cmp.Len(rows, 0))
	assert.Equal(t, idx.DistinctValues(), 6)
}

func TestFullScan_ForRangeIsUnsupported(t *testing.T) {
	idx, err := indexing.NewFullScan(letters(), 0)
	assert.NilError(t, err)

	rows, err := idx.ForRange("a", "c")
	assert.Assert(t, rows == nil)
	assert.Assert(t, errors.Is(err, domainerrors.ErrUnsupportedOperation))

	// still unsupported on an invalid index
	broken, _ := indexing.NewFullScan(letters(), 5)
	_, err = broken.ForRange("a", "c")
	assert.Assert(t, errors.Is(err, domainerrors.ErrUnsupportedOperation))
}

func TestFullScan_NormalizesNumbers(t *testing.T) {
	tbl := table.NewFromRows("n", [][]any{{1}, {int64(1)}, {1.0}, {2}})
	idx, err := indexing.NewFullScan(tbl, 0)
	assert.NilError(t, err)

	rows, err := idx.ContainingElement(int32(1))
	assert.NilError(t, err)
	assert.DeepEqual(t, rows, []int{0, 1, 2})
}

func TestFullScan_InvalidOnUnhashableValue(t *testing.T) {
	tbl := table.NewFromRows("bad", [][]any{{"ok"}, {[]int{1, 2}}})
	idx, err := indexing.NewFullScan(tbl, 0)
	assert.ErrorContains(t, err, "aborted")
	assert.Assert(t, !idx.Valid())

	_, err = idx.ContainingElement("ok")
	assert.Assert(t, errors.Is(err, domainerrors.ErrIndexInvalid))
}

func TestFullScan_InvalidOnBadColumn(t *testing.T) {
	idx, err := indexing.NewFullScan(letters(), 3)
	assert.Assert(t, errors.Is(err, domainerrors.ErrOutOfRange))
	assert.Assert(t, !idx.Valid())
}

func TestFullScan_RebuildAfterMutation(t *testing.T) {
	tbl := letters()
	idx, err := indexing.NewFullScan(tbl, 0)
	assert.NilError(t, err)

	assert.NilError(t, tbl.SetCell(1, 0, "b"))
	rows, _ := idx.ContainingElement("b")
	assert.Assert(t, cmp.Len(rows, 2)) // stale until rebuilt

	assert.NilError(t, idx.Rebuild())
	rows, _ = idx.ContainingElement("b")
	assert.DeepEqual(t, rows, []int{0, 1, 2})
}

func TestSorted_ContainingElementAndRange(t *testing.T) {
	idx, err := indexing.NewSorted(letters(), 0)
	assert.NilError(t, err)

	rows, err := idx.ContainingElement("e")
	assert.NilError(t, err)
	assert.DeepEqual(t, rows, []int{6, 7})

	rows, err = idx.ForRange("b", "d")
	assert.NilError(t, err)
	// b(0,2), c(5), d(3) in key order
	assert.DeepEqual(t, rows, []int{0, 2, 5, 3})

	rows, err = idx.ForRange("x", "z")
	assert.NilError(t, err)
	assert.Assert(t, cmp.Len(rows, 0))

	rows, err = idx.ForRange("d", "b")
	assert.NilError(t, err)
	assert.Assert(t, cmp.Len(rows, 0))

	lo, _ := idx.Min()
	hi, _ := idx.Max()
	assert.Equal(t, lo, any("a"))
	assert.Equal(t, hi, any("f"))
}

func TestSorted_NumericRange(t *testing.T) {
	tbl := table.NewFromRows("n", [][]any{{10}, {2.5}, {7}, {int64(3)}, {11}})
	idx, err := indexing.NewSorted(tbl, 0)
	assert.NilError(t, err)

	rows, err := idx.ForRange(3, 10)
	assert.NilError(t, err)
	assert.DeepEqual(t, rows, []int{3, 2, 0})
}

func TestSorted_InvalidOnMixedKinds(t *testing.T) {
	tbl := table.NewFromRows("mixed", [][]any{{"a"}, {1}})
	idx, err := indexing.NewSorted(tbl, 0)
	assert.ErrorContains(t, err, "cannot compare")
	assert.Assert(t, !idx.Valid())

	_, err = idx.ForRange("a", "b")
	assert.Assert(t, errors.Is(err, domainerrors.ErrIndexInvalid))
}

func TestSorted_LookupWithIncomparableKey(t *testing.T) {
	idx, err := indexing.NewSorted(letters(), 0)
	assert.NilError(t, err)

	_, err = idx.ContainingElement(42)
	var argErr *domainerrors.ArgumentError
	assert.Assert(t, errors.As(err, &argErr))
}

func TestBuild(t *testing.T) {
	tbl := letters()
	assert.NilError(t, tbl.SetColumnTitles("letter"))

	idx, err := indexing.BuildByTitle(tbl, "letter", indexing.KindSorted)
	assert.NilError(t, err)
	assert.Equal(t, idx.Kind(), indexing.KindSorted)
	assert.Equal(t, idx.Table(), tbl)

	all, err := indexing.BuildTableIndexes(tbl, indexing.KindFullScan)
	assert.NilError(t, err)
	assert.Assert(t, cmp.Len(all, 1))

	_, err = indexing.Build(tbl, 0, indexing.Kind("nope"))
	assert.ErrorContains(t, err, "unknown index kind")

	kind, err := indexing.ParseKind("btree")
	assert.NilError(t, err)
	assert.Equal(t, kind, indexing.KindSorted)
}
