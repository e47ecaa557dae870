package marshal

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// jsonCodec writes {"name", "columnTitles", "rows": [{"title", "cells"}]}.
// Integral numbers come back as int64, the rest as float64.
type jsonCodec struct {
	opts Options
}

type jsonTable struct {
	Name         string            `json:"name,omitempty"`
	ColumnTitles []any             `json:"columnTitles,omitempty"`
	Rows         []json.RawMessage `json:"rows"`
}

type jsonRow struct {
	Title any   `json:"title,omitempty"`
	Cells []any `json:"cells"`
}

func (c *jsonCodec) Format() Format { return JSON }

func (c *jsonCodec) Marshal(t *table.Table, w io.Writer) error {
	doc, handler, err := snapshot(t)
	if err != nil {
		return err
	}

	out := jsonTable{Rows: make([]json.RawMessage, 0, len(doc.Rows))}
	if c.opts.IncludeName {
		out.Name = doc.Name
	}
	if c.opts.IncludeColumnTitles && hasTitles(doc.ColumnTitles) {
		out.ColumnTitles = doc.ColumnTitles
	}

	skipped := 0
	for i, row := range doc.Rows {
		jr := jsonRow{Cells: row.Cells}
		if c.opts.IncludeRowTitles {
			jr.Title = row.Title
		}
		raw, err := json.Marshal(jr)
		if err != nil {
			if herr := recoverRecord(handler, JSON, "marshal", i+1, err); herr != nil {
				return herr
			}
			skipped++
			continue
		}
		out.Rows = append(out.Rows, raw)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return sinkFailure(handler, JSON, err)
	}
	logDone(c.opts, JSON, "marshal", doc.Name, len(out.Rows), skipped)
	return nil
}

func (c *jsonCodec) Unmarshal(r io.Reader) (*table.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var in jsonTable
	if err := dec.Decode(&in); err != nil {
		return nil, fatal(JSON, "unmarshal", err)
	}

	doc := document{Name: in.Name}
	for i, title := range in.ColumnTitles {
		v, err := jsonScalar(title)
		if err != nil {
			return nil, fatal(JSON, "unmarshal", fmt.Errorf("column title %d: %w", i+1, err))
		}
		doc.ColumnTitles = append(doc.ColumnTitles, v)
	}

	skipped := 0
	for i, raw := range in.Rows {
		row, err := decodeJSONRow(raw)
		if err != nil {
			if herr := recoverRecord(c.opts.Handler, JSON, "unmarshal", i+1, err); herr != nil {
				return nil, herr
			}
			skipped++
			continue
		}
		doc.Rows = append(doc.Rows, row)
	}

	t, err := assemble(doc, c.opts)
	if err != nil {
		return nil, fatal(JSON, "unmarshal", err)
	}
	logDone(c.opts, JSON, "unmarshal", doc.Name, len(doc.Rows), skipped)
	return t, nil
}

func decodeJSONRow(raw json.RawMessage) (docRow, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var jr jsonRow
	if err := dec.Decode(&jr); err != nil {
		return docRow{}, err
	}
	title, err := jsonScalar(jr.Title)
	if err != nil {
		return docRow{}, fmt.Errorf("row title: %w", err)
	}
	row := docRow{Title: title, Cells: make([]any, len(jr.Cells))}
	for j, v := range jr.Cells {
		if row.Cells[j], err = jsonScalar(v); err != nil {
			return docRow{}, fmt.Errorf("cell %d: %w", j+1, err)
		}
	}
	return row, nil
}

// jsonScalar accepts null, strings, numbers and bools
func jsonScalar(v any) (any, error) {
	switch n := v.(type) {
	case nil, string, bool:
		return n, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return types.Normalize(f), nil
	}
	return nil, fmt.Errorf("unsupported value of type %T, cells must be scalars", v)
}
