package testutil

import (
	"testing"

	"github.com/leengari/stripetable/internal/domain/table"
)

// AssertRowCount checks if the result has the expected number of rows
func AssertRowCount(t *testing.T, actual, expected int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, actual)
	}
}

// AssertColumnCount checks if a result has the expected number of columns
func AssertColumnCount(t *testing.T, actual, expected int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected %d columns, got %d", context, expected, actual)
	}
}

// AssertColumnExists checks that a column with the given title exists
func AssertColumnExists(t *testing.T, tbl *table.Table, column, context string) {
	t.Helper()
	if _, err := tbl.ColumnIndex(column); err != nil {
		t.Errorf("%s: expected column '%s' to exist", context, column)
	}
}

// AssertColumnNotExists checks that no column has the given title
func AssertColumnNotExists(t *testing.T, tbl *table.Table, column, context string) {
	t.Helper()
	if _, err := tbl.ColumnIndex(column); err == nil {
		t.Errorf("%s: did not expect column '%s' to exist", context, column)
	}
}

// AssertCell checks the value at (row, col)
func AssertCell(t *testing.T, tbl *table.Table, row, col int, expected any, context string) {
	t.Helper()
	v, err := tbl.Cell(row, col)
	if err != nil {
		t.Errorf("%s: reading cell (%d,%d): %v", context, row, col, err)
		return
	}
	if v != expected {
		t.Errorf("%s: cell (%d,%d) expected %v (%T), got %v (%T)", context, row, col, expected, expected, v, v)
	}
}

// AssertColumnValues checks a whole column, top to bottom
func AssertColumnValues(t *testing.T, tbl *table.Table, col int, expected []any, context string) {
	t.Helper()
	values, err := tbl.Column(col)
	if err != nil {
		t.Errorf("%s: reading column %d: %v", context, col, err)
		return
	}
	if len(values) != len(expected) {
		t.Errorf("%s: column %d expected %d values, got %d (%v)", context, col, len(expected), len(values), values)
		return
	}
	for i := range values {
		if values[i] != expected[i] {
			t.Errorf("%s: column %d row %d expected %v, got %v", context, col, i, expected[i], values[i])
		}
	}
}

// AssertNoError checks that an error is nil
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: expected no error, got: %v", context, err)
	}
}

// AssertError checks that an error is not nil
func AssertError(t *testing.T, err error, context string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected an error, got nil", context)
	}
}

// AssertNullValue checks if a value is nil
func AssertNullValue(t *testing.T, value any, context string) {
	t.Helper()
	if value != nil {
		t.Errorf("%s: expected NULL value, got: %v", context, value)
	}
}
