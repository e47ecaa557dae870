package marshal

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/util/types"
)

// Render writes t as aligned columns for people to read. Column titles head
// the output when present and row titles lead each line. nil shows as NULL.
func Render(t *table.Table, w io.Writer) error {
	doc, _, err := snapshot(t)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rowTitles := false
	for _, row := range doc.Rows {
		if row.Title != nil {
			rowTitles = true
			break
		}
	}

	if hasTitles(doc.ColumnTitles) {
		var header []string
		if rowTitles {
			header = append(header, "")
		}
		for i, title := range doc.ColumnTitles {
			if title == nil {
				header = append(header, fmt.Sprintf("#%d", i))
				continue
			}
			header = append(header, types.String(title))
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}

	for _, row := range doc.Rows {
		var line []string
		if rowTitles {
			line = append(line, types.String(row.Title))
		}
		for _, v := range row.Cells {
			line = append(line, renderValue(v))
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "(%d rows)\n", len(doc.Rows))
	return err
}

func renderValue(v any) string {
	if v == nil {
		return "NULL"
	}
	s := types.String(v)
	return strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`).Replace(s)
}
