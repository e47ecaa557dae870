// Package source adapts common record producers to table.DataSource so they
// can feed table.CopyFrom.
package source

import (
	"fmt"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

var (
	_ table.DataSource = (*sliceSource)(nil)
	_ table.DataSource = (*rowsSource)(nil)
)

type sliceSource struct {
	columns []string
	rows    [][]any
	pos     int
}

// FromSlice serves rows as they are
func FromSlice(columns []string, rows [][]any) table.DataSource {
	return &sliceSource{columns: columns, rows: rows, pos: -1}
}

// FromMaps serves maps keyed by column name, in the given column order.
// Missing keys become nil; keys not listed in columns are ignored.
func FromMaps(columns []string, records []map[string]any) table.DataSource {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = rec[col]
		}
		rows[i] = row
	}
	return FromSlice(columns, rows)
}

func (s *sliceSource) Columns() ([]string, error) { return s.columns, nil }

func (s *sliceSource) Next() bool {
	if s.pos+1 >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Values() ([]any, error) {
	if s.pos < 0 || s.pos >= len(s.rows) {
		return nil, fmt.Errorf("no current record")
	}
	return s.rows[s.pos], nil
}

func (s *sliceSource) Err() error { return nil }

// RowScanner is the cursor surface of *sql.Rows
type RowScanner interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

type rowsSource struct {
	rows    RowScanner
	columns []string
}

// FromRows reads a database cursor. Byte slices are copied into strings since
// the driver may reuse them.
func FromRows(rows RowScanner) table.DataSource {
	return &rowsSource{rows: rows}
}

func (s *rowsSource) Columns() ([]string, error) {
	if s.columns == nil {
		cols, err := s.rows.Columns()
		if err != nil {
			return nil, err
		}
		s.columns = cols
	}
	return s.columns, nil
}

func (s *rowsSource) Next() bool { return s.rows.Next() }

func (s *rowsSource) Values() ([]any, error) {
	cols, err := s.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := s.rows.Scan(dest...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
			continue
		}
		values[i] = types.Normalize(v)
	}
	return values, nil
}

func (s *rowsSource) Err() error { return s.rows.Err() }
