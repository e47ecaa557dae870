package projection

import (
	"fmt"
	"slices"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
)

// ValidateProjection checks that every projected column exists and belongs to
// one of the participating tables
func ValidateProjection(proj *Projection, tables ...*table.Table) error {
	if proj == nil || proj.SelectAll {
		return nil
	}
	if len(proj.Columns) == 0 {
		return &errors.ArgumentError{Op: "Projection", Argument: "columns", Reason: "no columns selected"}
	}

	for i, col := range proj.Columns {
		if err := col.Ref.Validate("Projection"); err != nil {
			return fmt.Errorf("projected column %d: %w", i, err)
		}
		if !slices.Contains(tables, col.Ref.Table) {
			return fmt.Errorf("column '%s' does not belong to the queried tables", col.Ref)
		}
	}

	return nil
}
