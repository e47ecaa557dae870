package marshal

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// Marshaller writes a table to a sink
type Marshaller interface {
	Marshal(t *table.Table, w io.Writer) error
}

// Unmarshaller reads a table from a source
type Unmarshaller interface {
	Unmarshal(r io.Reader) (*table.Table, error)
}

// Codec is both directions of one format
type Codec interface {
	Marshaller
	Unmarshaller
	Format() Format
}

// New returns the codec for format f
func New(f Format, opts Options) (Codec, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s options: %w", f, err)
	}
	opts = opts.withDefaults()
	switch f {
	case CSV:
		return &csvCodec{opts: opts}, nil
	case XML:
		return &xmlCodec{opts: opts}, nil
	case JSON:
		return &jsonCodec{opts: opts}, nil
	case YAML:
		return &yamlCodec{opts: opts}, nil
	case Text:
		return &textCodec{opts: opts}, nil
	case XLSX:
		return &xlsxCodec{opts: opts}, nil
	}
	return nil, fmt.Errorf("unknown format: %q", f)
}

// MarshalToString renders t with m
func MarshalToString(m Marshaller, t *table.Table) (string, error) {
	var buf bytes.Buffer
	if err := m.Marshal(t, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// UnmarshalString reads a table from s with u
func UnmarshalString(u Unmarshaller, s string) (*table.Table, error) {
	return u.Unmarshal(strings.NewReader(s))
}

// document is the format-neutral shape every codec reads and writes
type document struct {
	Name         string
	ColumnTitles []any
	Rows         []docRow
}

type docRow struct {
	Title any
	Cells []any
}

// snapshot copies t under one read lock. The handler is the table's own
// failure policy for marshalling.
func snapshot(t *table.Table) (document, errors.ExceptionHandler, error) {
	if t == nil {
		return document{}, nil, errors.NewNilArgument("Marshal", "table")
	}
	doc := document{Name: t.Name()}
	handler := t.ExceptionHandler()

	t.RLock()
	defer t.RUnlock()
	r := t.Unlocked()

	cols := r.ColumnCount()
	doc.ColumnTitles = make([]any, cols)
	for c := range cols {
		title, err := r.ColumnTitle(c)
		if err != nil {
			return document{}, nil, err
		}
		doc.ColumnTitles[c] = title
	}

	doc.Rows = make([]docRow, r.RowCount())
	for i := range doc.Rows {
		title, err := r.RowTitle(i)
		if err != nil {
			return document{}, nil, err
		}
		cells := make([]any, cols)
		for c := range cols {
			v, err := r.Cell(i, c)
			if err != nil {
				return document{}, nil, err
			}
			cells[c] = v
		}
		doc.Rows[i] = docRow{Title: title, Cells: cells}
	}
	return doc, handler, nil
}

// hasTitles reports whether titles carry anything worth writing
func hasTitles(titles []any) bool {
	for _, t := range titles {
		if t != nil {
			return true
		}
	}
	return false
}

// assemble builds the unmarshalled table
func assemble(doc document, opts Options) (*table.Table, error) {
	name := doc.Name
	if name == "" {
		name = opts.Name
	}
	t := table.New(name, append([]table.Option{table.WithLogger(opts.Logger)}, opts.TableOptions...)...)
	if hasTitles(doc.ColumnTitles) {
		if err := t.SetColumnTitles(doc.ColumnTitles...); err != nil {
			return nil, err
		}
	}
	for i, row := range doc.Rows {
		if err := t.AddRow(row.Cells...); err != nil {
			return nil, err
		}
		if row.Title != nil {
			if err := t.SetRowTitle(i, row.Title); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// recoverRecord passes a record failure to h. A nil result means skip the record
// and go on.
func recoverRecord(h errors.ExceptionHandler, f Format, op string, record int, err error) error {
	merr := &errors.MarshalError{Format: string(f), Op: op, Line: record, Err: err}
	return h.Handle(string(f)+" "+op, merr)
}

// sinkFailure hands a write or flush failure on the output to h. The sink is
// unusable afterwards, so a nil result ends the marshal without an error.
func sinkFailure(h errors.ExceptionHandler, f Format, err error) error {
	if h == nil {
		h = errors.Rethrow{}
	}
	return recoverRecord(h, f, "marshal", 0, err)
}

// fatal wraps a failure that leaves nothing to continue with
func fatal(f Format, op string, err error) error {
	var merr *errors.MarshalError
	if stderrors.As(err, &merr) {
		return err
	}
	return &errors.MarshalError{Format: string(f), Op: op, Err: err}
}

// textValue converts a text cell into a table value
func textValue(s string, opts Options) any {
	if opts.ParseValues {
		return types.ParseCanonical(s)
	}
	return s
}

func logDone(opts Options, f Format, op, name string, rows, skipped int) {
	opts.Logger.Debug("Table "+op+" completed",
		slog.String("format", string(f)),
		slog.String("table", name),
		slog.Int("rows", rows),
		slog.Int("skipped", skipped),
	)
}
