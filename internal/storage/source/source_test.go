package source_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/storage/source"
	"github.com/leengari/stripetable/internal/query/operations/testutil"
)

func TestFromSlice(t *testing.T) {
	tbl := table.New("people")
	err := tbl.CopyFrom(source.FromSlice([]string{"name", "age"}, [][]any{
		{"ann", 31},
		{"ben", 27},
	}))
	assert.NilError(t, err)
	assert.DeepEqual(t, tbl.ColumnTitles(), []any{"name", "age"})
	testutil.AssertRowCount(t, tbl.RowCount(), 2, "copied rows")
	testutil.AssertCell(t, tbl, 1, 0, "ben", "name")
}

func TestFromMaps(t *testing.T) {
	tbl := table.New("people")
	err := tbl.CopyFrom(source.FromMaps([]string{"age", "name"}, []map[string]any{
		{"name": "ann", "age": 31, "ignored": true},
		{"name": "ben"},
	}))
	assert.NilError(t, err)
	assert.DeepEqual(t, tbl.Rows(), [][]any{{31, "ann"}, {nil, "ben"}})
}

// fakeRows behaves like *sql.Rows over fixed data
type fakeRows struct {
	cols []string
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Columns() ([]string, error) { return r.cols, nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destination arguments, got %d", len(row), len(dest))
	}
	for i, v := range row {
		*(dest[i].(*any)) = v
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func TestFromRows(t *testing.T) {
	rows := &fakeRows{
		cols: []string{"id", "email"},
		data: [][]any{
			{int32(1), []byte("a@example.com")},
			{int32(2), nil},
		},
	}

	tbl := table.New("accounts")
	assert.NilError(t, tbl.CopyFrom(source.FromRows(rows)))
	assert.DeepEqual(t, tbl.Rows(), [][]any{
		{int64(1), "a@example.com"},
		{int64(2), nil},
	})
}

func TestFromRows_IterationError(t *testing.T) {
	boom := stderrors.New("connection reset")
	rows := &fakeRows{cols: []string{"id"}, data: [][]any{{1}}, err: boom}

	err := table.New("t").CopyFrom(source.FromRows(rows))
	assert.Assert(t, stderrors.Is(err, boom))
}
