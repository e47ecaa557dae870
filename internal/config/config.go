package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/query/indexing"
	"github.com/leengari/stripetable/internal/storage/marshal"
)

// Config is the stripetable.yaml file
type Config struct {
	Log     LogConfig     `yaml:"log"`
	CSV     CSVConfig     `yaml:"csv"`
	Marshal MarshalConfig `yaml:"marshal"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	SeqURL    string `yaml:"seq_url"`
	AddSource bool   `yaml:"add_source"`
}

type CSVConfig struct {
	Delimiter      string `yaml:"delimiter"`
	Quote          string `yaml:"quote"`
	DisableQuoting bool   `yaml:"disable_quoting"`
}

type MarshalConfig struct {
	OnError             string `yaml:"on_error"` // rethrow | continue
	IncludeName         bool   `yaml:"include_name"`
	IncludeColumnTitles bool   `yaml:"include_column_titles"`
	IncludeRowTitles    bool   `yaml:"include_row_titles"`
	ParseValues         bool   `yaml:"parse_values"`
}

type StorageConfig struct {
	BasePath string `yaml:"base_path"`
	Format   string `yaml:"format"`
}

type IndexConfig struct {
	Kind string `yaml:"kind"` // fullscan | sorted
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		CSV: CSVConfig{Delimiter: ",", Quote: `"`},
		Marshal: MarshalConfig{
			OnError:             "rethrow",
			IncludeColumnTitles: true,
			ParseValues:         true,
		},
		Storage: StorageConfig{BasePath: "data", Format: "csv"},
		Index:   IndexConfig{Kind: "fullscan"},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that have a fixed vocabulary
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv.delimiter: want exactly one character, got %q", c.CSV.Delimiter)
	}
	if !c.CSV.DisableQuoting && utf8.RuneCountInString(c.CSV.Quote) != 1 {
		return fmt.Errorf("csv.quote: want exactly one character, got %q", c.CSV.Quote)
	}
	switch c.Marshal.OnError {
	case "rethrow", "continue", "log", "log-and-continue":
	default:
		return fmt.Errorf("marshal.on_error: unknown policy %q", c.Marshal.OnError)
	}
	if _, err := marshal.ParseFormat(c.Storage.Format); err != nil {
		return fmt.Errorf("storage.format: %w", err)
	}
	if _, err := indexing.ParseKind(c.Index.Kind); err != nil {
		return fmt.Errorf("index.kind: %w", err)
	}
	return c.MarshalOptions(nil).Validate()
}

// MarshalOptions translates the file into codec options. The on_error policy
// covers unmarshalling and, through TableOptions, later marshalling of the
// tables read. logger receives skipped records under the continue policy.
func (c Config) MarshalOptions(logger *slog.Logger) marshal.Options {
	handler := errors.HandlerForPolicy(c.Marshal.OnError, logger)
	opts := marshal.Options{
		IncludeName:         c.Marshal.IncludeName,
		IncludeColumnTitles: c.Marshal.IncludeColumnTitles,
		IncludeRowTitles:    c.Marshal.IncludeRowTitles,
		DisableQuoting:      c.CSV.DisableQuoting,
		ParseValues:         c.Marshal.ParseValues,
		Handler:             handler,
		Logger:              logger,
		// tables read with these options marshal under the same policy
		TableOptions: []table.Option{table.WithExceptionHandler(handler)},
	}
	opts.Delimiter, _ = utf8.DecodeRuneInString(c.CSV.Delimiter)
	opts.Quote, _ = utf8.DecodeRuneInString(c.CSV.Quote)
	return opts
}

// Write stores c as YAML, for `config init`
func Write(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SlogLevel maps log.level onto slog
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
