package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, Default())

	cfg, err = Load("")
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, Default())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stripetable.yaml")
	assert.NilError(t, os.WriteFile(path, []byte(`
log:
  level: debug
csv:
  delimiter: ";"
marshal:
  on_error: continue
storage:
  format: yaml
`), 0644))

	cfg, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, cfg.Log.Level, "debug")
	assert.Equal(t, cfg.CSV.Delimiter, ";")
	assert.Equal(t, cfg.CSV.Quote, `"`)
	assert.Equal(t, cfg.Storage.Format, "yaml")
	assert.Equal(t, cfg.Storage.BasePath, "data")

	opts := cfg.MarshalOptions(nil)
	assert.Equal(t, opts.Delimiter, ';')
	assert.Assert(t, opts.IncludeColumnTitles)
	_, isContinue := opts.Handler.(errors.LogAndContinue)
	assert.Assert(t, isContinue)

	tbl := table.New("read", opts.TableOptions...)
	_, tableContinues := tbl.ExceptionHandler().(errors.LogAndContinue)
	assert.Assert(t, tableContinues)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, LogConfig{Level: "DEBUG"}.SlogLevel(), slog.LevelDebug)
	assert.Equal(t, LogConfig{Level: "warning"}.SlogLevel(), slog.LevelWarn)
	assert.Equal(t, LogConfig{Level: "error"}.SlogLevel(), slog.LevelError)
	assert.Equal(t, LogConfig{Level: "info"}.SlogLevel(), slog.LevelInfo)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "csv.delimiter"},
		{"same delimiter and quote", func(c *Config) { c.CSV.Delimiter = `"` }, "must differ"},
		{"policy", func(c *Config) { c.Marshal.OnError = "ignore" }, "marshal.on_error"},
		{"format", func(c *Config) { c.Storage.Format = "parquet" }, "storage.format"},
		{"index", func(c *Config) { c.Index.Kind = "bitmap" }, "index.kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
	assert.NilError(t, Default().Validate())
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Index.Kind = "sorted"
	assert.NilError(t, Write(path, cfg))

	back, err := Load(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, back, cfg)
}
