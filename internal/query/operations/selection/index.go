package selection

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"

	"github.com/leengari/stripetable/internal/domain/errors"
	"github.com/leengari/stripetable/internal/query/indexing"
	"github.com/leengari/stripetable/internal/planner/predicate"
)

// indexCandidates asks the index for base rows when one of the base
// predicates filters the indexed column. Returned rows are in table order.
// A failed lookup falls back to a full scan; every candidate is still checked
// against all predicates afterwards.
func (q *Query) indexCandidates(ctx context.Context, preds []predicate.Predicate) ([]int, bool) {
	idx := q.index
	if idx == nil {
		return nil, false
	}
	if idx.Table() != q.base {
		q.logger.Warn("Index ignored: built on another table",
			slog.String("index_kind", string(idx.Kind())),
		)
		return nil, false
	}

	for _, p := range preds {
		rows, ok, err := lookup(idx, p)
		if !ok {
			continue
		}
		if err != nil {
			level := slog.LevelWarn
			if stderrors.Is(err, errors.ErrUnsupportedOperation) || stderrors.Is(err, errors.ErrIndexInvalid) {
				level = slog.LevelDebug
			}
			q.logger.Log(ctx, level, "Index lookup failed, falling back to full scan",
				slog.String("index_kind", string(idx.Kind())),
				slog.Int("column", idx.Column()),
				slog.Any("error", err),
			)
			return nil, false
		}
		slices.Sort(rows)
		return slices.Compact(rows), true
	}
	return nil, false
}

// lookup reports ok=false when p cannot be answered by idx at all
func lookup(idx indexing.ScannableStripeDataContainer, p predicate.Predicate) ([]int, bool, error) {
	switch p := p.(type) {
	case *predicate.ColumnValueEquals:
		if p.Column.Index != idx.Column() {
			return nil, false, nil
		}
		rows, err := idx.ContainingElement(p.Value)
		return rows, true, err
	case *predicate.ColumnValueIsIn:
		if p.Column.Index != idx.Column() {
			return nil, false, nil
		}
		var rows []int
		for _, v := range p.Values {
			found, err := idx.ContainingElement(v)
			if err != nil {
				return nil, true, err
			}
			rows = append(rows, found...)
		}
		return rows, true, nil
	case *predicate.ColumnValueIsBetween:
		if p.Column.Index != idx.Column() {
			return nil, false, nil
		}
		rows, err := idx.ForRange(p.From, p.To)
		return rows, true, err
	}
	return nil, false, nil
}
