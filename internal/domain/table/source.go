package table

import (
	"fmt"
	"log/slog"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/stripe"
)

// DataSource produces rows for CopyFrom, in the manner of a database cursor
type DataSource interface {
	// Columns returns the column names; they become column titles
	Columns() ([]string, error)
	// Next advances to the next record and reports whether there is one
	Next() bool
	// Values returns the current record
	Values() ([]any, error)
	// Err returns the error that stopped iteration, if any
	Err() error
}

// CopyFrom replaces the table content with everything src produces.
// On error the table keeps the rows copied so far.
func (t *Table) CopyFrom(src DataSource) error {
	if src == nil {
		return errors.NewNilArgument("CopyFrom", "source")
	}

	columns, err := src.Columns()
	if err != nil {
		return fmt.Errorf("failed to read source columns: %w", err)
	}

	t.Lock()
	defer t.Unlock()

	t.clearUnsafe()
	for i, name := range columns {
		if err := t.insertStripeUnsafe(stripe.Column, i, nil); err != nil {
			return err
		}
		if err := t.setTitleUnsafe(stripe.Column, i, name); err != nil {
			return err
		}
	}

	copied := 0
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return fmt.Errorf("failed to read source record %d: %w", copied+1, err)
		}
		if err := t.insertStripeUnsafe(stripe.Row, t.stripes.Rows().Len(), values); err != nil {
			return err
		}
		copied++
	}
	if err := src.Err(); err != nil {
		return fmt.Errorf("source iteration failed after %d records: %w", copied, err)
	}

	t.logger.Info("table copied from source",
		slog.String("table", t.name),
		slog.Int("rows", copied),
		slog.Int("columns", len(columns)),
	)
	return nil
}
