package table

import (
	"slices"
	"strings"
)

// ReadLockAll read-locks every distinct table in id order and returns the
// matching unlock function. A fixed order keeps two multi-table readers from
// deadlocking behind a waiting writer.
func ReadLockAll(tables ...*Table) (unlock func()) {
	ordered := make([]*Table, 0, len(tables))
	for _, t := range tables {
		if t != nil && !slices.Contains(ordered, t) {
			ordered = append(ordered, t)
		}
	}
	slices.SortFunc(ordered, func(a, b *Table) int {
		return strings.Compare(a.id.String(), b.id.String())
	})

	for _, t := range ordered {
		t.RLock()
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].RUnlock()
		}
	}
}
