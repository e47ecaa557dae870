package table

import (
	"github.com/leengari/stripetable/internal/util/types"
)

// EqualContent reports whether two tables hold the same content: name, titles
// and cell values compared by their string form. Object identity and ids are
// ignored, so a table read back from a text format equals its source.
func EqualContent(a, b *Table) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}

	unlock := ReadLockAll(a, b)
	defer unlock()

	return Diff(a.Unlocked(), b.Unlocked(), a.name, b.name) == ""
}

// Diff describes the first content difference between two readers, or "" when
// none is found
func Diff(a, b Reader, nameA, nameB string) string {
	if nameA != nameB {
		return "name: " + nameA + " != " + nameB
	}
	if a.RowCount() != b.RowCount() {
		return "row count differs"
	}
	if a.ColumnCount() != b.ColumnCount() {
		return "column count differs"
	}
	for c := 0; c < a.ColumnCount(); c++ {
		ta, _ := a.ColumnTitle(c)
		tb, _ := b.ColumnTitle(c)
		if types.String(ta) != types.String(tb) {
			return "column title differs"
		}
	}
	for r := 0; r < a.RowCount(); r++ {
		ta, _ := a.RowTitle(r)
		tb, _ := b.RowTitle(r)
		if types.String(ta) != types.String(tb) {
			return "row title differs"
		}
		for c := 0; c < a.ColumnCount(); c++ {
			va, errA := a.Cell(r, c)
			vb, errB := b.Cell(r, c)
			if errA != nil || errB != nil {
				return "cell unreadable"
			}
			if types.String(va) != types.String(vb) {
				return "cell value differs: " + types.String(va) + " != " + types.String(vb)
			}
		}
	}
	return ""
}
