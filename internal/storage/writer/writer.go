package writer

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/storage/marshal"
	"github.com/leengari/stripetable/internal/storage/metadata"
)

// SaveTable persists the table as data.<ext> plus meta.json in dir, each
// written atomically. Name and titles are always stored.
func SaveTable(t *table.Table, dir string, format marshal.Format, opts marshal.Options) (metadata.TableMeta, error) {
	if t == nil || dir == "" {
		return metadata.TableMeta{}, fmt.Errorf("cannot save table: nil or missing path")
	}

	opts.IncludeName = true
	opts.IncludeColumnTitles = true
	opts.IncludeRowTitles = true
	codec, err := marshal.New(format, opts)
	if err != nil {
		return metadata.TableMeta{}, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return metadata.TableMeta{}, fmt.Errorf("failed to create table directory: %w", err)
	}

	tableName := t.Name()

	// 1. Marshal data
	var data bytes.Buffer
	if err := codec.Marshal(t, &data); err != nil {
		return metadata.TableMeta{}, fmt.Errorf("failed to marshal rows for %s: %w", tableName, err)
	}

	// 2. Prepare meta from the in-memory state
	meta := metadata.TableMeta{
		ID:           t.ID(),
		Name:         tableName,
		Format:       string(format),
		DataFile:     "data." + format.Ext(),
		RowCount:     t.RowCount(),
		ColumnCount:  t.ColumnCount(),
		ColumnTitles: t.HasColumnTitles(),
		RowTitles:    t.HasRowTitles(),
		SavedAt:      time.Now().UTC(),
	}
	if format == marshal.CSV {
		meta.Delimiter = string(orDefault(opts.Delimiter, ','))
		if !opts.DisableQuoting {
			meta.Quote = string(orDefault(opts.Quote, '"'))
		}
	}

	metaBytes, err := metadata.Encode(meta)
	if err != nil {
		return metadata.TableMeta{}, fmt.Errorf("failed to marshal table meta for %s: %w", tableName, err)
	}

	// 3. Data first, so meta.json never points at a missing file
	if err := metadata.WriteAtomic(filepath.Join(dir, meta.DataFile), data.Bytes()); err != nil {
		return metadata.TableMeta{}, fmt.Errorf("table %s: %w", tableName, err)
	}
	if err := metadata.WriteAtomic(filepath.Join(dir, metadata.FileName), metaBytes); err != nil {
		return metadata.TableMeta{}, fmt.Errorf("table %s: %w", tableName, err)
	}

	slog.Info("Table saved successfully",
		slog.String("table", tableName),
		slog.String("path", dir),
		slog.String("format", string(format)),
		slog.Int("row_count", meta.RowCount),
	)
	return meta, nil
}

func orDefault(r, def rune) rune {
	if r == 0 {
		return def
	}
	return r
}
