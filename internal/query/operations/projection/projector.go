package projection

import (
	"github.com/leengari/stripetable/internal/domain/table"
)

// Titles computes the result column titles.
// An alias wins; otherwise the source title, qualified as "table.title" when
// more than one table participates and the source table is named.
func Titles(cols []Column, joined bool) []any {
	titles := make([]any, len(cols))
	for i, col := range cols {
		switch {
		case col.Alias != "":
			titles[i] = col.Alias
		case joined && col.Ref.Table.Name() != "":
			titles[i] = col.Ref.String()
		default:
			titles[i] = col.Ref.Title()
		}
	}
	return titles
}

// HasTitles reports whether any result column would carry a real title
func HasTitles(cols []Column) bool {
	for _, col := range cols {
		if col.Alias != "" {
			return true
		}
		if title, err := col.Ref.Table.ColumnTitle(col.Ref.Index); err == nil && title != nil {
			return true
		}
	}
	return false
}

// ValueSource yields the value of a column for the current row binding
type ValueSource interface {
	Value(ref table.ColumnRef) (any, error)
}

// ProjectRow reads the projected columns from src, in projection order
func ProjectRow(src ValueSource, cols []Column) ([]any, error) {
	row := make([]any, len(cols))
	for i, col := range cols {
		v, err := src.Value(col.Ref)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}
