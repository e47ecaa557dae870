package indexing

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// FullScan is a hash index built by reading every cell of one column once.
// Equality lookups are O(1) after the scan; range lookups are not supported.
type FullScan struct {
	table  *table.Table
	column int
	data   map[any][]int // value → row positions
	valid  bool
	err    error
}

var _ ScannableStripeDataContainer = (*FullScan)(nil)

// NewFullScan builds the index immediately. A failed scan still returns the
// index, marked invalid, together with the failure.
func NewFullScan(t *table.Table, column int) (*FullScan, error) {
	idx := &FullScan{table: t, column: column}
	return idx, idx.Rebuild()
}

// Rebuild scans the column again and replaces the index content
func (idx *FullScan) Rebuild() error {
	idx.data = make(map[any][]int)
	idx.valid = false
	idx.err = nil

	if idx.table == nil {
		idx.err = errors.NewNilArgument("FullScan", "table")
		return idx.err
	}

	name := idx.table.Name()
	idx.table.RLock()
	defer idx.table.RUnlock()

	if err := idx.scan(idx.table.Unlocked()); err != nil {
		idx.data = make(map[any][]int)
		idx.err = err
		slog.Warn("full scan index invalid",
			slog.String("table", name),
			slog.Int("column", idx.column),
			slog.Any("error", err))
		return err
	}

	idx.valid = true
	slog.Debug("index built",
		slog.String("table", name),
		slog.String("kind", string(KindFullScan)),
		slog.Int("column", idx.column),
		slog.Int("unique_values", len(idx.data)))
	return nil
}

// scan fills the map; a panic from an unhashable value becomes an error
func (idx *FullScan) scan(r table.Reader) (err error) {
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
		key := types.Normalize(val)
		idx.data[key] = append(idx.data[key], rowPos)
	}
	return nil
}

// ContainingElement returns the rows whose indexed cell equals key
func (idx *FullScan) ContainingElement(key any) (rows []int, err error) {
	if !idx.valid {
		return nil, fmt.Errorf("full scan of column %d: %w", idx.column, errors.ErrIndexInvalid)
	}
	defer func() {
		if rec := recover(); rec != nil {
			rows, err = nil, &errors.ArgumentError{Op: "ContainingElement", Argument: "key", Reason: fmt.Sprint(rec)}
		}
	}()
	return slices.Clone(idx.data[types.Normalize(key)]), nil
}

// ForRange is not available on a hash index. Build a Sorted index for ranges.
func (idx *FullScan) ForRange(from, to any) ([]int, error) {
	return nil, &errors.UnsupportedOperationError{
		Op:     "FullScan.ForRange",
		Reason: "hash index has no key order; use a sorted index",
	}
}

// Valid reports whether the last scan completed
func (idx *FullScan) Valid() bool { return idx.valid }

// Err returns why the index is invalid
func (idx *FullScan) Err() error { return idx.err }

// Column returns the indexed column
func (idx *FullScan) Column() int { return idx.column }

// Kind returns KindFullScan
func (idx *FullScan) Kind() Kind { return KindFullScan }

// Table returns the indexed table
func (idx *FullScan) Table() *table.Table { return idx.table }

// DistinctValues is the number of distinct keys
func (idx *FullScan) DistinctValues() int { return len(idx.data) }
