package indexing

import (
	"fmt"
	"log/slog"

	"github.com/leengari/stripetable/internal/domain/table"
)

// Build creates an index of the requested kind over one column.
// The returned index is never nil; when err != nil it is marked invalid and
// callers should fall back to an unindexed scan.
func Build(t *table.Table, column int, kind Kind) (ScannableStripeDataContainer, error) {
	var (
		idx ScannableStripeDataContainer
		err error
	)
	switch kind {
	case KindSorted:
		idx, err = NewSorted(t, column)
	case KindFullScan, "":
		idx, err = NewFullScan(t, column)
	default:
		return nil, fmt.Errorf("unknown index kind: %s", kind)
	}

	if err == nil {
		warnOnMixedTypes(t, column)
	}
	return idx, err
}

// BuildByTitle resolves the column by title before building
func BuildByTitle(t *table.Table, title string, kind Kind) (ScannableStripeDataContainer, error) {
	column, err := t.ColumnIndex(title)
	if err != nil {
		return nil, err
	}
	return Build(t, column, kind)
}

// BuildTableIndexes indexes every titled column of a table.
// Returns error on the first column that fails to scan.
func BuildTableIndexes(t *table.Table, kind Kind) (map[string]ScannableStripeDataContainer, error) {
	indexes := make(map[string]ScannableStripeDataContainer)
	for i, title := range t.ColumnTitles() {
		if title == nil {
			continue
		}
		idx, err := Build(t, i, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to build index for column %d of table %s: %w", i, t.Name(), err)
		}
		indexes[fmt.Sprint(title)] = idx
	}
	return indexes, nil
}

// warnOnMixedTypes reports columns holding more than one dynamic type, which
// usually means numbers and their text form got mixed during a load
func warnOnMixedTypes(t *table.Table, column int) {
	values, err := t.Column(column)
	if err != nil || len(values) == 0 {
		return
	}

	first := ""
	for row, v := range values {
		if v == nil {
			continue
		}
		current := fmt.Sprintf("%T", v)
		if first == "" {
			first = current
			continue
		}
		if current != first {
			slog.Warn("type inconsistency in column",
				slog.String("table", t.Name()),
				slog.Int("column", column),
				slog.String("previous_type", first),
				slog.String("new_type", current),
				slog.Int("row", row))
			return // only report once
		}
	}
}
