package marshal

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// csvCodec reads and writes delimited text with a configurable delimiter and
// quote character.
//
// Layout, one record per line:
//
//	[name]
//	[<empty>,] title, title, ...      when column titles are included
//	[row title,] value, value, ...
//
// A field is quoted when it contains the delimiter, the quote or a line
// break; quotes inside are doubled. nil is an empty field and the empty
// string is an empty quoted field.
type csvCodec struct {
	opts Options
}

func (c *csvCodec) Format() Format { return CSV }

func (c *csvCodec) Marshal(t *table.Table, w io.Writer) error {
	doc, handler, err := snapshot(t)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	records := layoutRecords(doc, c.opts)
	written, skipped := 0, 0
	for i, rec := range records {
		line, err := c.encodeRecord(rec.fields)
		if err != nil {
			if herr := recoverRecord(handler, CSV, "marshal", i+1, err); herr != nil {
				return herr
			}
			skipped++
			continue
		}
		if _, err := bw.WriteString(line); err != nil {
			return sinkFailure(handler, CSV, err)
		}
		if rec.isRow {
			written++
		}
	}
	if err := bw.Flush(); err != nil {
		return sinkFailure(handler, CSV, err)
	}
	logDone(c.opts, CSV, "marshal", doc.Name, written, skipped)
	return nil
}

func (c *csvCodec) encodeRecord(fields []*string) (string, error) {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteRune(c.opts.Delimiter)
		}
		if f == nil {
			continue
		}
		if err := c.encodeField(&sb, *f); err != nil {
			return "", fmt.Errorf("field %d: %w", i+1, err)
		}
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}

func (c *csvCodec) encodeField(sb *strings.Builder, s string) error {
	needsQuote := s == "" || strings.ContainsAny(s, "\r\n") ||
		strings.ContainsRune(s, c.opts.Delimiter) ||
		(!c.opts.DisableQuoting && strings.ContainsRune(s, c.opts.Quote))
	if !needsQuote {
		sb.WriteString(s)
		return nil
	}
	if c.opts.DisableQuoting {
		if s == "" {
			return nil
		}
		return fmt.Errorf("value %q needs quoting but quoting is disabled", s)
	}
	q := string(c.opts.Quote)
	sb.WriteString(q)
	sb.WriteString(strings.ReplaceAll(s, q, q+q))
	sb.WriteString(q)
	return nil
}

func (c *csvCodec) Unmarshal(r io.Reader) (*table.Table, error) {
	cr := &csvReader{
		r:      bufio.NewReader(r),
		delim:  c.opts.Delimiter,
		quote:  c.opts.Quote,
		quoted: !c.opts.DisableQuoting,
	}

	var records []record
	skipped := 0
	for n := 1; ; n++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if rerr, ok := err.(*recordError); ok {
			if herr := recoverRecord(c.opts.Handler, CSV, "unmarshal", n, rerr); herr != nil {
				return nil, herr
			}
			skipped++
			continue
		}
		if err != nil {
			return nil, fatal(CSV, "unmarshal", err)
		}
		records = append(records, record{fields: fields})
	}

	doc := parseRecords(records, c.opts, func(s string) any { return textValue(s, c.opts) })
	t, err := assemble(doc, c.opts)
	if err != nil {
		return nil, fatal(CSV, "unmarshal", err)
	}
	logDone(c.opts, CSV, "unmarshal", doc.Name, len(doc.Rows), skipped)
	return t, nil
}

// recordError is a malformed record; the reader has already moved past it
type recordError struct {
	line int
	msg  string
}

func (e *recordError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

// csvReader splits CSV records. Quoted fields may span lines.
type csvReader struct {
	r      *bufio.Reader
	delim  rune
	quote  rune
	quoted bool
	line   int
}

// Read returns the next record as fields, nil standing for an empty unquoted
// field. It returns io.EOF at the end of input and *recordError for a record
// it had to skip.
func (cr *csvReader) Read() ([]*string, error) {
	if _, err := cr.r.Peek(1); err != nil {
		return nil, err
	}
	cr.line++

	var fields []*string
	for {
		field, end, err := cr.readField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
		if end {
			return fields, nil
		}
	}
}

// readField reads one field and the separator after it; end is true when the
// separator was a line break or end of input
func (cr *csvReader) readField() (field *string, end bool, err error) {
	ch, _, err := cr.r.ReadRune()
	if err == io.EOF {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	if cr.quoted && ch == cr.quote {
		return cr.readQuoted()
	}

	var sb strings.Builder
	for {
		switch {
		case ch == cr.delim:
			return finish(&sb), false, nil
		case ch == '\n':
			return finish(&sb), true, nil
		case ch == '\r':
			cr.skipLF()
			return finish(&sb), true, nil
		case cr.quoted && ch == cr.quote:
			return nil, false, cr.skipLine(fmt.Sprintf("bare %q in unquoted field", cr.quote))
		}
		sb.WriteRune(ch)

		ch, _, err = cr.r.ReadRune()
		if err == io.EOF {
			return finish(&sb), true, nil
		}
		if err != nil {
			return nil, false, err
		}
	}
}

func (cr *csvReader) readQuoted() (*string, bool, error) {
	startLine := cr.line
	var sb strings.Builder
	for {
		ch, _, err := cr.r.ReadRune()
		if err == io.EOF {
			return nil, false, fmt.Errorf("unterminated quoted field starting at line %d", startLine)
		}
		if err != nil {
			return nil, false, err
		}
		if ch == '\n' {
			cr.line++
		}
		if ch != cr.quote {
			sb.WriteRune(ch)
			continue
		}

		next, _, err := cr.r.ReadRune()
		if err == io.EOF {
			s := sb.String()
			return &s, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		switch {
		case next == cr.quote:
			sb.WriteRune(cr.quote)
		case next == cr.delim:
			s := sb.String()
			return &s, false, nil
		case next == '\n':
			s := sb.String()
			return &s, true, nil
		case next == '\r':
			cr.skipLF()
			s := sb.String()
			return &s, true, nil
		default:
			return nil, false, cr.skipLine(fmt.Sprintf("unexpected %q after closing quote", next))
		}
	}
}

// skipLine drops the rest of the physical line and reports the record
func (cr *csvReader) skipLine(msg string) error {
	line := cr.line
	if _, err := cr.r.ReadString('\n'); err != nil && err != io.EOF {
		return err
	}
	return &recordError{line: line, msg: msg}
}

func (cr *csvReader) skipLF() {
	if next, _, err := cr.r.ReadRune(); err == nil && next != '\n' {
		_ = cr.r.UnreadRune()
	}
}

func finish(sb *strings.Builder) *string {
	if sb.Len() == 0 {
		return nil
	}
	s := sb.String()
	return &s
}

// record is one line-level record shared by the CSV, text and XLSX layouts.
// A nil field is a missing value.
type record struct {
	fields []*string
	isRow  bool
}

// layoutRecords turns a document into records following the options
func layoutRecords(doc document, opts Options) []record {
	var records []record
	if opts.IncludeName {
		records = append(records, record{fields: []*string{strPtr(doc.Name)}})
	}
	if opts.IncludeColumnTitles {
		var fields []*string
		if opts.IncludeRowTitles {
			fields = append(fields, nil)
		}
		for _, title := range doc.ColumnTitles {
			fields = append(fields, valuePtr(title))
		}
		records = append(records, record{fields: fields})
	}
	for _, row := range doc.Rows {
		fields := make([]*string, 0, len(row.Cells)+1)
		if opts.IncludeRowTitles {
			fields = append(fields, valuePtr(row.Title))
		}
		for _, v := range row.Cells {
			fields = append(fields, valuePtr(v))
		}
		records = append(records, record{fields: fields, isRow: true})
	}
	return records
}

// parseRecords is the inverse of layoutRecords
func parseRecords(records []record, opts Options, value func(string) any) document {
	var doc document
	if opts.IncludeName && len(records) > 0 {
		if f := records[0].fields; len(f) > 0 && f[0] != nil {
			doc.Name = *f[0]
		}
		records = records[1:]
	}
	if opts.IncludeColumnTitles && len(records) > 0 {
		fields := records[0].fields
		if opts.IncludeRowTitles && len(fields) > 0 {
			fields = fields[1:]
		}
		for _, f := range fields {
			doc.ColumnTitles = append(doc.ColumnTitles, titleOf(f))
		}
		records = records[1:]
	}
	for _, rec := range records {
		fields := rec.fields
		var row docRow
		if opts.IncludeRowTitles && len(fields) > 0 {
			row.Title = titleOf(fields[0])
			fields = fields[1:]
		}
		row.Cells = make([]any, len(fields))
		for i, f := range fields {
			if f != nil {
				row.Cells[i] = value(*f)
			}
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc
}

func titleOf(f *string) any {
	if f == nil || *f == "" {
		return nil
	}
	return *f
}

func strPtr(s string) *string { return &s }

func valuePtr(v any) *string {
	if v == nil {
		return nil
	}
	s := types.String(v)
	return &s
}
