package selection

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/planner/predicate"
	"github.com/leengari/stripetable/internal/query/operations/projection"
)

// execution holds the state of one run. Everything read through the table
// locks (names, titles) is gathered before the scan so that the locked path
// only reads through Unlocked readers.
type execution struct {
	ctx        context.Context
	tables     []*table.Table
	readers    []table.Reader
	levels     [][]predicate.Predicate
	cols       []projection.Column
	candidates []int
	rowTitles  bool

	tuple  *predicate.Tuple
	rows   [][]any
	titles []any
	stats  Stats
}

// ExecuteContext runs the query; ctx is checked between base rows
func (q *Query) ExecuteContext(ctx context.Context) (*table.Table, error) {
	q.stats = Stats{}
	if q.err != nil {
		return nil, q.err
	}

	tables := q.Tables()
	if err := projection.ValidateProjection(q.proj, tables...); err != nil {
		return nil, err
	}
	levels, err := schedule(q.preds, tables)
	if err != nil {
		return nil, err
	}

	cols := q.proj.Expand(tables...)
	joined := len(tables) > 1
	var colTitles []any
	if projection.HasTitles(cols) {
		colTitles = projection.Titles(cols, joined)
	}
	baseName := q.base.Name()
	name := q.name
	if name == "" {
		name = baseName
	}

	ex := &execution{
		ctx:       ctx,
		tables:    tables,
		readers:   make([]table.Reader, len(tables)),
		levels:    levels,
		cols:      cols,
		rowTitles: !joined && q.base.HasRowTitles(),
		tuple:     predicate.NewTuple(),
	}

	q.logger.Debug("Starting SELECT",
		slog.String("table", baseName),
		slog.Int("joins", len(q.joins)),
		slog.Int("predicates", len(q.preds)),
		slog.Bool("table_lock", q.locked),
	)

	err = q.run(ex)
	q.stats = ex.stats
	if err != nil {
		return nil, err
	}

	result, err := build(name, q.logger, len(cols), colTitles, ex.rows, ex.titles)
	if err != nil {
		return nil, fmt.Errorf("building result of %s: %w", baseName, err)
	}

	q.logger.Info("SELECT completed",
		slog.String("table", baseName),
		slog.Int("rows_scanned", ex.stats.RowsScanned),
		slog.Bool("index_used", ex.stats.IndexUsed),
		slog.Int("result_rows", ex.stats.RowsMatched),
	)
	return result, nil
}

func (q *Query) run(ex *execution) error {
	if q.locked {
		unlock := table.ReadLockAll(ex.tables...)
		defer unlock()
		for i, t := range ex.tables {
			ex.readers[i] = t.Unlocked()
		}
	} else {
		for i, t := range ex.tables {
			ex.readers[i] = t
		}
	}

	candidates, used := q.indexCandidates(ex.ctx, ex.levels[0])
	if used {
		ex.stats.IndexUsed = true
		ex.stats.IndexCandidates = len(candidates)
		ex.candidates = candidates
	}
	return ex.walk(0, used)
}

// walk binds each row of tables[level] in turn and descends once the
// predicates that became evaluable at this level all match
func (ex *execution) walk(level int, fromIndex bool) error {
	if level == len(ex.tables) {
		return ex.emit()
	}

	t, r := ex.tables[level], ex.readers[level]
	rows := r.RowCount()
	n := rows
	if level == 0 && fromIndex {
		n = len(ex.candidates)
	}

	bound := false
	for i := 0; i < n; i++ {
		row := i
		if level == 0 {
			if err := ex.ctx.Err(); err != nil {
				return err
			}
			if fromIndex {
				row = ex.candidates[i]
				// stale index positions past the end are skipped
				if row >= rows {
					continue
				}
			}
			ex.stats.RowsScanned++
		}

		ex.tuple.Bind(t, r, row)
		bound = true
		ok, err := ex.matches(level)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := ex.walk(level+1, false); err != nil {
			return err
		}
	}
	if bound {
		ex.tuple.Unbind()
	}
	return nil
}

func (ex *execution) matches(level int) (bool, error) {
	for _, p := range ex.levels[level] {
		ok, err := p.Evaluate(ex.tuple)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (ex *execution) emit() error {
	row, err := projection.ProjectRow(ex.tuple, ex.cols)
	if err != nil {
		return err
	}
	ex.rows = append(ex.rows, row)
	ex.stats.RowsMatched++

	if ex.rowTitles {
		baseRow, _ := ex.tuple.Row(ex.tables[0])
		title, err := ex.readers[0].RowTitle(baseRow)
		if err != nil {
			return err
		}
		ex.titles = append(ex.titles, title)
	}
	return nil
}

// schedule places every predicate at the first nesting level where all of the
// tables it reads are bound
func schedule(preds []predicate.Predicate, tables []*table.Table) ([][]predicate.Predicate, error) {
	levels := make([][]predicate.Predicate, len(tables))
	for _, p := range preds {
		level := 0
		for _, t := range p.Tables() {
			pos := slices.Index(tables, t)
			if pos < 0 {
				name := "<nil>"
				if t != nil {
					name = t.Name()
				}
				return nil, &errors.ArgumentError{
					Op:       "Where",
					Argument: "predicate",
					Reason:   fmt.Sprintf("reads table %q which is not part of the query", name),
				}
			}
			level = max(level, pos)
		}
		levels[level] = append(levels[level], p)
	}
	return levels, nil
}

// build creates the result with every selected column, even when no row matched
func build(name string, logger *slog.Logger, width int, colTitles []any, rows [][]any, rowTitles []any) (*table.Table, error) {
	result := table.New(name, table.WithLogger(logger))
	for result.ColumnCount() < width {
		if err := result.AddColumn(); err != nil {
			return nil, err
		}
	}
	if colTitles != nil {
		if err := result.SetColumnTitles(colTitles...); err != nil {
			return nil, err
		}
	}
	for i, row := range rows {
		if err := result.AddRow(row...); err != nil {
			return nil, err
		}
		if rowTitles != nil && rowTitles[i] != nil {
			if err := result.SetRowTitle(i, rowTitles[i]); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}
