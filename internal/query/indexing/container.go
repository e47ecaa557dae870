package indexing

import (
	"fmt"

	"github.com/leengari/stripetable/internal/domain/table"
)

// ScannableStripeDataContainer maps the values of one column to the rows
// holding them. Row positions are those at build time; the index is not
// updated when the table changes and must be rebuilt by the caller.
type ScannableStripeDataContainer interface {
	// ContainingElement returns every row whose cell equals key
	ContainingElement(key any) ([]int, error)
	// ForRange returns every row whose cell lies in the closed range [from, to]
	ForRange(from, to any) ([]int, error)
	// Valid reports whether the build scan completed and lookups can be trusted
	Valid() bool
	// Column is the indexed column position
	Column() int
	// Table is the indexed table
	Table() *table.Table
	// Kind names the index implementation
	Kind() Kind
	// Rebuild scans the column again
	Rebuild() error
}

// Kind selects an index implementation
type Kind string

const (
	KindFullScan Kind = "fullscan"
	KindSorted   Kind = "sorted"
)

// ParseKind accepts "fullscan"/"hash" and "sorted"/"btree"
func ParseKind(s string) (Kind, error) {
	switch s {
	case "fullscan", "hash", "":
		return KindFullScan, nil
	case "sorted", "btree":
		return KindSorted, nil
	}
	return "", fmt.Errorf("unknown index kind: %s", s)
}
