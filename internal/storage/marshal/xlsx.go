package marshal

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

const defaultSheet = "Sheet1"

// xlsxCodec writes a single worksheet using the CSV layout, one record per
// spreadsheet row. Numbers are stored as numeric cells.
type xlsxCodec struct {
	opts Options
}

func (c *xlsxCodec) Format() Format { return XLSX }

func (c *xlsxCodec) Marshal(t *table.Table, w io.Writer) error {
	doc, handler, err := snapshot(t)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(doc.Name)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fatal(XLSX, "marshal", err)
		}
	}

	rowNum, written, skipped := 1, 0, 0
	for i, rec := range layoutValues(doc, c.opts) {
		if err := writeSheetRow(f, sheet, rowNum, rec.values); err != nil {
			if rmErr := f.RemoveRow(sheet, rowNum); rmErr != nil {
				return fatal(XLSX, "marshal", rmErr)
			}
			if herr := recoverRecord(handler, XLSX, "marshal", i+1, err); herr != nil {
				return herr
			}
			skipped++
			continue
		}
		rowNum++
		if rec.isRow {
			written++
		}
	}

	if err := f.Write(w); err != nil {
		return sinkFailure(handler, XLSX, err)
	}
	logDone(c.opts, XLSX, "marshal", doc.Name, written, skipped)
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("cell %s: %w", cell, err)
		}
	}
	return nil
}

func (c *xlsxCodec) Unmarshal(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fatal(XLSX, "unmarshal", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fatal(XLSX, "unmarshal", fmt.Errorf("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fatal(XLSX, "unmarshal", err)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	records := make([]record, len(rows))
	for i, row := range rows {
		fields := make([]*string, width)
		for j, s := range row {
			if s != "" {
				fields[j] = strPtr(s)
			}
		}
		records[i] = record{fields: fields}
	}

	doc := parseRecords(records, c.opts, func(s string) any { return textValue(s, c.opts) })
	if doc.Name == "" && sheets[0] != defaultSheet {
		doc.Name = sheets[0]
	}
	t, err := assemble(doc, c.opts)
	if err != nil {
		return nil, fatal(XLSX, "unmarshal", err)
	}
	logDone(c.opts, XLSX, "unmarshal", doc.Name, len(doc.Rows), 0)
	return t, nil
}

type valueRecord struct {
	values []any
	isRow  bool
}

// layoutValues is layoutRecords keeping numbers numeric
func layoutValues(doc document, opts Options) []valueRecord {
	var out []valueRecord
	for _, rec := range layoutRecords(doc, opts) {
		vr := valueRecord{values: make([]any, len(rec.fields)), isRow: rec.isRow}
		for i, f := range rec.fields {
			if f != nil {
				vr.values[i] = *f
			}
		}
		out = append(out, vr)
	}

	// put typed cells back over their string forms
	first := 0
	if opts.IncludeName {
		first++
	}
	if opts.IncludeColumnTitles {
		first++
	}
	offset := 0
	if opts.IncludeRowTitles {
		offset = 1
	}
	for i, row := range doc.Rows {
		for j, v := range row.Cells {
			switch n := types.Normalize(v).(type) {
			case int64, float64:
				out[first+i].values[offset+j] = n
			}
		}
	}
	return out
}

// sheetName fits a table name into the worksheet naming rules
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.Trim(name, "'"))
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	if name == "" {
		return defaultSheet
	}
	return name
}
