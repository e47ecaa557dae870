package marshal

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// xmlCodec writes
//
//	<table name="...">
//	  <columns><title>...</title></columns>
//	  <row title="..."><cell>...</cell><cell nil="true"/></row>
//	</table>
type xmlCodec struct {
	opts Options
}

type xmlTable struct {
	XMLName xml.Name    `xml:"table"`
	Name    string      `xml:"name,attr,omitempty"`
	Columns *xmlColumns `xml:"columns,omitempty"`
	Rows    []xmlRow    `xml:"row"`
}

type xmlColumns struct {
	Titles []xmlValue `xml:"title"`
}

type xmlRow struct {
	Title *string    `xml:"title,attr,omitempty"`
	Cells []xmlValue `xml:"cell"`
}

type xmlValue struct {
	Nil   string `xml:"nil,attr,omitempty"`
	Value string `xml:",chardata"`
}

func toXMLValue(v any) xmlValue {
	if v == nil {
		return xmlValue{Nil: "true"}
	}
	return xmlValue{Value: types.String(v)}
}

func (v xmlValue) decode(opts Options) (any, error) {
	switch v.Nil {
	case "true":
		return nil, nil
	case "", "false":
		return textValue(v.Value, opts), nil
	}
	return nil, fmt.Errorf("invalid nil attribute %q", v.Nil)
}

func (c *xmlCodec) Format() Format { return XML }

func (c *xmlCodec) Marshal(t *table.Table, w io.Writer) error {
	doc, handler, err := snapshot(t)
	if err != nil {
		return err
	}

	out := xmlTable{Rows: make([]xmlRow, len(doc.Rows))}
	if c.opts.IncludeName {
		out.Name = doc.Name
	}
	if c.opts.IncludeColumnTitles {
		out.Columns = &xmlColumns{}
		for _, title := range doc.ColumnTitles {
			out.Columns.Titles = append(out.Columns.Titles, toXMLValue(title))
		}
	}
	for i, row := range doc.Rows {
		x := xmlRow{Cells: make([]xmlValue, len(row.Cells))}
		if c.opts.IncludeRowTitles && row.Title != nil {
			x.Title = strPtr(types.String(row.Title))
		}
		for j, v := range row.Cells {
			x.Cells[j] = toXMLValue(v)
		}
		out.Rows[i] = x
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return sinkFailure(handler, XML, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return sinkFailure(handler, XML, err)
	}
	if err := enc.Close(); err != nil {
		return sinkFailure(handler, XML, err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return sinkFailure(handler, XML, err)
	}
	logDone(c.opts, XML, "marshal", doc.Name, len(doc.Rows), 0)
	return nil
}

func (c *xmlCodec) Unmarshal(r io.Reader) (*table.Table, error) {
	var in xmlTable
	if err := xml.NewDecoder(r).Decode(&in); err != nil {
		return nil, fatal(XML, "unmarshal", err)
	}

	doc := document{Name: in.Name}
	if in.Columns != nil {
		for i, title := range in.Columns.Titles {
			v, err := title.decode(Options{})
			if err != nil {
				return nil, fatal(XML, "unmarshal", fmt.Errorf("column title %d: %w", i+1, err))
			}
			doc.ColumnTitles = append(doc.ColumnTitles, v)
		}
	}

	skipped := 0
	for i, x := range in.Rows {
		row, err := c.decodeRow(x)
		if err != nil {
			if herr := recoverRecord(c.opts.Handler, XML, "unmarshal", i+1, err); herr != nil {
				return nil, herr
			}
			skipped++
			continue
		}
		doc.Rows = append(doc.Rows, row)
	}

	t, err := assemble(doc, c.opts)
	if err != nil {
		return nil, fatal(XML, "unmarshal", err)
	}
	logDone(c.opts, XML, "unmarshal", doc.Name, len(doc.Rows), skipped)
	return t, nil
}

func (c *xmlCodec) decodeRow(x xmlRow) (docRow, error) {
	row := docRow{Cells: make([]any, len(x.Cells))}
	if x.Title != nil && *x.Title != "" {
		row.Title = *x.Title
	}
	for j, cell := range x.Cells {
		v, err := cell.decode(c.opts)
		if err != nil {
			return docRow{}, fmt.Errorf("cell %d: %w", j+1, err)
		}
		row.Cells[j] = v
	}
	return row, nil
}
