package marshal

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/leengari/stripetable/internal/domain/table"
)

// textCodec writes tab-separated lines. Tabs, line breaks and backslashes
// inside values are escaped, and \N stands for nil, so every string survives
// a round trip. Layout follows the CSV codec.
type textCodec struct {
	opts Options
}

const textNil = `\N`

var textEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

func (c *textCodec) Format() Format { return Text }

func (c *textCodec) Marshal(t *table.Table, w io.Writer) error {
	doc, handler, err := snapshot(t)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	rows := 0
	for _, rec := range layoutRecords(doc, c.opts) {
		for i, f := range rec.fields {
			if i > 0 {
				bw.WriteByte('\t')
			}
			if f == nil {
				bw.WriteString(textNil)
				continue
			}
			bw.WriteString(textEscaper.Replace(*f))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return sinkFailure(handler, Text, err)
		}
		if rec.isRow {
			rows++
		}
	}
	if err := bw.Flush(); err != nil {
		return sinkFailure(handler, Text, err)
	}
	logDone(c.opts, Text, "marshal", doc.Name, rows, 0)
	return nil
}

func (c *textCodec) Unmarshal(r io.Reader) (*table.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []record
	skipped := 0
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		fields, err := splitTextLine(line)
		if err != nil {
			if herr := recoverRecord(c.opts.Handler, Text, "unmarshal", n, err); herr != nil {
				return nil, herr
			}
			skipped++
			continue
		}
		records = append(records, record{fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, fatal(Text, "unmarshal", err)
	}

	doc := parseRecords(records, c.opts, func(s string) any { return textValue(s, c.opts) })
	t, err := assemble(doc, c.opts)
	if err != nil {
		return nil, fatal(Text, "unmarshal", err)
	}
	logDone(c.opts, Text, "unmarshal", doc.Name, len(doc.Rows), skipped)
	return t, nil
}

func splitTextLine(line string) ([]*string, error) {
	parts := strings.Split(line, "\t")
	fields := make([]*string, len(parts))
	for i, p := range parts {
		if p == textNil {
			continue
		}
		s, err := unescapeText(p)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
		fields[i] = &s
	}
	return fields, nil
}

func unescapeText(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("dangling backslash")
		}
		switch s[i] {
		case '\\':
			sb.WriteByte('\\')
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return sb.String(), nil
}
