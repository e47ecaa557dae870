package marshal

import (
	"fmt"
	"log/slog"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
)

// Options controls layout and failure handling of every codec
type Options struct {
	IncludeName         bool
	IncludeColumnTitles bool
	IncludeRowTitles    bool

	// CSV only. Zero values mean ',' and '"'.
	Delimiter      rune
	Quote          rune
	DisableQuoting bool

	// ParseValues turns text cells that render back unchanged into int64,
	// float64 or bool. Formats with typed documents ignore it.
	ParseValues bool

	// Name is given to unmarshalled tables whose document carries none
	Name string

	// TableOptions are applied to unmarshalled tables
	TableOptions []table.Option

	// Handler decides about malformed records while unmarshalling. Marshal
	// uses the handler of the table instead. nil means Rethrow.
	Handler errors.ExceptionHandler
	Logger  *slog.Logger
}

// DefaultOptions returns comma-separated CSV with typed values and no titles
func DefaultOptions() Options {
	return Options{
		Delimiter:   ',',
		Quote:       '"',
		ParseValues: true,
	}
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.Handler == nil {
		o.Handler = errors.Rethrow{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Validate checks the CSV dialect
func (o Options) Validate() error {
	o = o.withDefaults()
	switch {
	case o.Delimiter == '\n' || o.Delimiter == '\r':
		return fmt.Errorf("delimiter cannot be a line break")
	case !o.DisableQuoting && (o.Quote == '\n' || o.Quote == '\r'):
		return fmt.Errorf("quote cannot be a line break")
	case !o.DisableQuoting && o.Delimiter == o.Quote:
		return fmt.Errorf("delimiter and quote must differ, both are %q", o.Delimiter)
	}
	return nil
}
