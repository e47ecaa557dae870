package selection

import (
	"context"
	"log/slog"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/planner/predicate"
	"github.com/leengari/stripetable/internal/query/indexing"
	"github.com/leengari/stripetable/internal/query/operations/projection"
)

// Query selects rows from a base table, optionally joined with further tables.
// Builder methods record the first error; Execute returns it.
type Query struct {
	base   *table.Table
	joins  []*table.Table
	proj   *projection.Projection
	preds  []predicate.Predicate
	index  indexing.ScannableStripeDataContainer
	locked bool
	name   string
	logger *slog.Logger
	err    error
	stats  Stats
}

// Stats describes the last execution
type Stats struct {
	RowsScanned     int  // base rows visited
	IndexCandidates int  // base rows proposed by the index
	IndexUsed       bool // false when no index was given or the lookup fell back to a scan
	RowsMatched     int  // result rows
}

// From starts a query over t
func From(t *table.Table) *Query {
	q := &Query{
		base:   t,
		proj:   projection.NewProjection(),
		logger: slog.Default(),
	}
	if t == nil {
		q.err = errors.NewNilArgument("From", "table")
	}
	return q
}

// Columns projects the given columns, in order
func (q *Query) Columns(refs ...table.ColumnRef) *Query {
	q.proj = projection.Of(refs...)
	return q
}

// Project sets a full projection (aliases included). nil selects everything.
func (q *Query) Project(p *projection.Projection) *Query {
	if p == nil {
		p = projection.NewProjection()
	}
	q.proj = p
	return q
}

// Join adds t to the nested loop, after the tables already present.
// A table may take part only once; self-joins are rejected.
func (q *Query) Join(t *table.Table) *Query {
	if q.err != nil {
		return q
	}
	if t == nil {
		q.err = errors.NewNilArgument("Join", "table")
		return q
	}
	for _, present := range q.Tables() {
		if present == t {
			q.err = &errors.UnsupportedOperationError{
				Op:     "Join",
				Reason: "table " + t.Name() + " already takes part in the query; self-joins are not supported",
			}
			return q
		}
	}
	q.joins = append(q.joins, t)
	return q
}

// OnEqual adds the join condition left = right
func (q *Query) OnEqual(left, right table.ColumnRef) *Query {
	if q.err != nil {
		return q
	}
	p, err := predicate.NewEqualColumns(left, right)
	if err != nil {
		q.err = err
		return q
	}
	q.preds = append(q.preds, p)
	return q
}

// Where adds filters; all of them must match
func (q *Query) Where(preds ...predicate.Predicate) *Query {
	if q.err != nil {
		return q
	}
	for _, p := range preds {
		if p == nil {
			q.err = errors.NewNilArgument("Where", "predicate")
			return q
		}
	}
	q.preds = append(q.preds, preds...)
	return q
}

// UseIndex lets the query take base candidates from idx
func (q *Query) UseIndex(idx indexing.ScannableStripeDataContainer) *Query {
	q.index = idx
	return q
}

// WithTableLock holds read locks on every participating table for the whole
// execution. Without it each cell read locks on its own and concurrent writers
// may interleave with the scan.
func (q *Query) WithTableLock(lock bool) *Query {
	q.locked = lock
	return q
}

// Named sets the result table name; it defaults to the base table name
func (q *Query) Named(name string) *Query {
	q.name = name
	return q
}

// WithLogger replaces the default logger
func (q *Query) WithLogger(logger *slog.Logger) *Query {
	if logger != nil {
		q.logger = logger
	}
	return q
}

// Tables lists the base table followed by the joined tables
func (q *Query) Tables() []*table.Table {
	if q.base == nil {
		return q.joins
	}
	return append([]*table.Table{q.base}, q.joins...)
}

// Base returns the base table
func (q *Query) Base() *table.Table { return q.base }

// Err returns the first builder error, if any
func (q *Query) Err() error { return q.err }

// Stats returns the statistics of the last execution
func (q *Query) Stats() Stats { return q.stats }

// Execute runs the query
func (q *Query) Execute() (*table.Table, error) {
	return q.ExecuteContext(context.Background())
}
