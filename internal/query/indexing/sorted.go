package indexing

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/btree"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

const btreeDegree = 16

// entry is one distinct key with the rows holding it, in row order
type entry struct {
	key  any
	rows []int
}

// Sorted is an ordered index over one column. It answers equality lookups and
// closed-range lookups as a contiguous walk over the key order.
type Sorted struct {
	table  *table.Table
	column int
	tree   *btree.BTreeG[entry]
	valid  bool
	err    error
}

var _ ScannableStripeDataContainer = (*Sorted)(nil)

// NewSorted builds the ordered index immediately
func NewSorted(t *table.Table, column int) (*Sorted, error) {
	idx := &Sorted{table: t, column: column}
	return idx, idx.Rebuild()
}

// compareKeys panics on incomparable keys; scan and lookups recover it
func compareKeys(a, b entry) bool {
	c, err := types.Compare(a.key, b.key)
	if err != nil {
		panic(err)
	}
	return c < 0
}

// Rebuild scans the column again
func (idx *Sorted) Rebuild() error {
	idx.tree = btree.NewG[entry](btreeDegree, compareKeys)
	idx.valid = false
	idx.err = nil

	if idx.table == nil {
		idx.err = errors.NewNilArgument("Sorted", "table")
		return idx.err
	}

	name := idx.table.Name()
	idx.table.RLock()
	defer idx.table.RUnlock()

	if err := idx.scan(idx.table.Unlocked()); err != nil {
		idx.tree = btree.NewG[entry](btreeDegree, compareKeys)
		idx.err = err
		slog.Warn("sorted index invalid",
			slog.String("table", name),
			slog.Int("column", idx.column),
			slog.Any("error", err))
		return err
	}

	idx.valid = true
	slog.Debug("index built",
		slog.String("table", name),
		slog.String("kind", string(KindSorted)),
		slog.Int("column", idx.column),
		slog.Int("unique_values", idx.tree.Len()))
	return nil
}

func (idx *Sorted) scan(r table.Reader) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scan of column %d aborted: %v", idx.column, rec)
		}
	}()

	if err := errors.CheckIndex("column", idx.column, r.ColumnCount()); err != nil {
		return err
	}

	for rowPos := 0; rowPos < r.RowCount(); rowPos++ {
		val, err := r.Cell(rowPos, idx.column)
		if err != nil {
			return fmt.Errorf("failed to read row %d: %w", rowPos, err)
		}
		key := entry{key: types.Normalize(val)}
		if existing, found := idx.tree.Get(key); found {
			existing.rows = append(existing.rows, rowPos)
			idx.tree.ReplaceOrInsert(existing)
			continue
		}
		key.rows = []int{rowPos}
		idx.tree.ReplaceOrInsert(key)
	}
	return nil
}

// ContainingElement returns the rows whose cell equals key
func (idx *Sorted) ContainingElement(key any) (rows []int, err error) {
	if !idx.valid {
		return nil, fmt.Errorf("sorted index on column %d: %w", idx.column, errors.ErrIndexInvalid)
	}
	defer recoverLookup("ContainingElement", &rows, &err)

	found, ok := idx.tree.Get(entry{key: types.Normalize(key)})
	if !ok {
		return nil, nil
	}
	return slices.Clone(found.rows), nil
}

// ForRange returns the rows whose cell lies in [from, to], ordered by key and
// then by row. from > to yields no rows.
func (idx *Sorted) ForRange(from, to any) (rows []int, err error) {
	if !idx.valid {
		return nil, fmt.Errorf("sorted index on column %d: %w", idx.column, errors.ErrIndexInvalid)
	}
	defer recoverLookup("ForRange", &rows, &err)

	upper := types.Normalize(to)
	idx.tree.AscendGreaterOrEqual(entry{key: types.Normalize(from)}, func(e entry) bool {
		c, cmpErr := types.Compare(e.key, upper)
		if cmpErr != nil {
			panic(cmpErr)
		}
		if c > 0 {
			return false
		}
		rows = append(rows, e.rows...)
		return true
	})
	return rows, nil
}

// Min and Max return the smallest and largest keys
func (idx *Sorted) Min() (any, bool) {
	e, ok := idx.tree.Min()
	return e.key, ok
}

func (idx *Sorted) Max() (any, bool) {
	e, ok := idx.tree.Max()
	return e.key, ok
}

// Valid reports whether the last scan completed
func (idx *Sorted) Valid() bool { return idx.valid }

// Err returns why the index is invalid
func (idx *Sorted) Err() error { return idx.err }

// Column returns the indexed column
func (idx *Sorted) Column() int { return idx.column }

// Kind returns KindSorted
func (idx *Sorted) Kind() Kind { return KindSorted }

// Table returns the indexed table
func (idx *Sorted) Table() *table.Table { return idx.table }

// recoverLookup turns an incomparable-key panic into an ArgumentError
func recoverLookup(op string, rows *[]int, err *error) {
	if rec := recover(); rec != nil {
		*rows = nil
		*err = &errors.ArgumentError{Op: op, Argument: "key", Reason: fmt.Sprint(rec)}
	}
}
