package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/storage/marshal"
	"github.com/leengari/stripetable/internal/storage/metadata"
)

// LoadTable reads a directory written by writer.SaveTable. The stored table
// id is restored.
func LoadTable(dir string, opts marshal.Options) (*table.Table, metadata.TableMeta, error) {
	meta, err := metadata.Read(dir)
	if err != nil {
		return nil, meta, err
	}

	format, err := marshal.ParseFormat(meta.Format)
	if err != nil {
		return nil, meta, fmt.Errorf("table %s: %w", meta.Name, err)
	}

	opts.IncludeName = true
	opts.IncludeColumnTitles = true
	opts.IncludeRowTitles = true
	opts.Name = meta.Name
	opts.TableOptions = append(opts.TableOptions, table.WithID(meta.ID))
	if meta.Delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(meta.Delimiter)
	}
	if format == marshal.CSV {
		if meta.Quote == "" {
			opts.DisableQuoting = true
		} else {
			opts.Quote, _ = utf8.DecodeRuneInString(meta.Quote)
		}
	}

	codec, err := marshal.New(format, opts)
	if err != nil {
		return nil, meta, err
	}

	dataFile := meta.DataFile
	if dataFile == "" {
		dataFile = "data." + format.Ext()
	}
	f, err := os.Open(filepath.Join(dir, dataFile))
	if err != nil {
		return nil, meta, err
	}
	defer f.Close()

	t, err := codec.Unmarshal(f)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to load rows for %s: %w", meta.Name, err)
	}

	if t.RowCount() != meta.RowCount {
		slog.Warn("Row count differs from metadata",
			slog.String("table", meta.Name),
			slog.Int("meta_rows", meta.RowCount),
			slog.Int("loaded_rows", t.RowCount()),
		)
	}

	slog.Debug("Table loaded",
		slog.String("table", meta.Name),
		slog.String("path", dir),
		slog.String("format", meta.Format),
		slog.Int("row_count", t.RowCount()),
	)
	return t, meta, nil
}
