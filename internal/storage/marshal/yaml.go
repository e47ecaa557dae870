package marshal

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// yamlCodec mirrors the JSON document shape
type yamlCodec struct {
	opts Options
}

type yamlTable struct {
	Name         string      `yaml:"name,omitempty"`
	ColumnTitles []any       `yaml:"columnTitles,omitempty"`
	Rows         []yaml.Node `yaml:"rows"`
}

type yamlRow struct {
	Title any   `yaml:"title,omitempty"`
	Cells []any `yaml:"cells"`
}

func (c *yamlCodec) Format() Format { return YAML }

func (c *yamlCodec) Marshal(t *table.Table, w io.Writer) error {
	doc, handler, err := snapshot(t)
	if err != nil {
		return err
	}

	out := yamlTable{Rows: make([]yaml.Node, 0, len(doc.Rows))}
	if c.opts.IncludeName {
		out.Name = doc.Name
	}
	if c.opts.IncludeColumnTitles && hasTitles(doc.ColumnTitles) {
		out.ColumnTitles = doc.ColumnTitles
	}

	skipped := 0
	for i, row := range doc.Rows {
		yr := yamlRow{Cells: row.Cells}
		if c.opts.IncludeRowTitles {
			yr.Title = row.Title
		}
		node, err := encodeYAMLNode(yr)
		if err != nil {
			if herr := recoverRecord(handler, YAML, "marshal", i+1, err); herr != nil {
				return herr
			}
			skipped++
			continue
		}
		out.Rows = append(out.Rows, *node)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return sinkFailure(handler, YAML, err)
	}
	if err := enc.Close(); err != nil {
		return sinkFailure(handler, YAML, err)
	}
	logDone(c.opts, YAML, "marshal", doc.Name, len(out.Rows), skipped)
	return nil
}

// encodeYAMLNode turns the encoder's panics on unsupported types into errors
func encodeYAMLNode(v any) (node *yaml.Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			node, err = nil, fmt.Errorf("cannot encode row: %v", rec)
		}
	}()
	node = &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return node, nil
}

func (c *yamlCodec) Unmarshal(r io.Reader) (*table.Table, error) {
	var in yamlTable
	if err := yaml.NewDecoder(r).Decode(&in); err != nil && err != io.EOF {
		return nil, fatal(YAML, "unmarshal", err)
	}

	doc := document{Name: in.Name}
	for i, title := range in.ColumnTitles {
		v, err := yamlScalar(title)
		if err != nil {
			return nil, fatal(YAML, "unmarshal", fmt.Errorf("column title %d: %w", i+1, err))
		}
		doc.ColumnTitles = append(doc.ColumnTitles, v)
	}

	skipped := 0
	for i := range in.Rows {
		row, err := decodeYAMLRow(&in.Rows[i])
		if err != nil {
			if herr := recoverRecord(c.opts.Handler, YAML, "unmarshal", i+1, err); herr != nil {
				return nil, herr
			}
			skipped++
			continue
		}
		doc.Rows = append(doc.Rows, row)
	}

	t, err := assemble(doc, c.opts)
	if err != nil {
		return nil, fatal(YAML, "unmarshal", err)
	}
	logDone(c.opts, YAML, "unmarshal", doc.Name, len(doc.Rows), skipped)
	return t, nil
}

func decodeYAMLRow(node *yaml.Node) (docRow, error) {
	var yr yamlRow
	if err := node.Decode(&yr); err != nil {
		return docRow{}, err
	}
	title, err := yamlScalar(yr.Title)
	if err != nil {
		return docRow{}, fmt.Errorf("row title: %w", err)
	}
	row := docRow{Title: title, Cells: make([]any, len(yr.Cells))}
	for j, v := range yr.Cells {
		if row.Cells[j], err = yamlScalar(v); err != nil {
			return docRow{}, fmt.Errorf("cell %d: %w", j+1, err)
		}
	}
	return row, nil
}

func yamlScalar(v any) (any, error) {
	switch v.(type) {
	case map[string]any, map[any]any, []any:
		return nil, fmt.Errorf("unsupported value of type %T, cells must be scalars", v)
	}
	return types.Normalize(v), nil
}
