package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/planner/predicate"
	"github.com/leengari/stripetable/internal/util/types"
)

// resolveColumn turns "title", "#2" or "table.title" into a reference.
// Unqualified names are looked up in the base table first.
func resolveColumn(tables []*table.Table, name string) (table.ColumnRef, error) {
	if prefix, rest, ok := strings.Cut(name, "."); ok {
		for _, t := range tables {
			if t.Name() == prefix {
				return columnOf(t, rest)
			}
		}
	}
	var firstErr error
	for _, t := range tables {
		ref, err := columnOf(t, name)
		if err == nil {
			return ref, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return table.ColumnRef{}, firstErr
}

func columnOf(t *table.Table, name string) (table.ColumnRef, error) {
	if pos, ok := strings.CutPrefix(name, "#"); ok {
		i, err := strconv.Atoi(pos)
		if err != nil {
			return table.ColumnRef{}, fmt.Errorf("bad column position %q", name)
		}
		ref := t.Col(i)
		return ref, ref.Validate("resolveColumn")
	}
	return t.ColNamed(name)
}

// buildPredicates parses the select filter flags
func buildPredicates(tables []*table.Table, where, in, between []string) ([]predicate.Predicate, error) {
	var preds []predicate.Predicate

	add := func(flag, expr string, build func(table.ColumnRef, string) (predicate.Predicate, error)) error {
		col, value, ok := strings.Cut(expr, "=")
		if !ok {
			return fmt.Errorf("--%s wants col=value, got %q", flag, expr)
		}
		ref, err := resolveColumn(tables, col)
		if err != nil {
			return err
		}
		p, err := build(ref, value)
		if err != nil {
			return fmt.Errorf("--%s %s: %w", flag, expr, err)
		}
		preds = append(preds, p)
		return nil
	}

	for _, expr := range where {
		err := add("where", expr, func(ref table.ColumnRef, v string) (predicate.Predicate, error) {
			return predicate.NewColumnValueEquals(ref, types.ParseCanonical(v))
		})
		if err != nil {
			return nil, err
		}
	}
	for _, expr := range in {
		err := add("in", expr, func(ref table.ColumnRef, v string) (predicate.Predicate, error) {
			parts := strings.Split(v, ",")
			values := make([]any, len(parts))
			for i, p := range parts {
				values[i] = types.ParseCanonical(p)
			}
			return predicate.NewColumnValueIsIn(ref, values...)
		})
		if err != nil {
			return nil, err
		}
	}
	for _, expr := range between {
		err := add("between", expr, func(ref table.ColumnRef, v string) (predicate.Predicate, error) {
			lo, hi, ok := strings.Cut(v, ":")
			if !ok {
				return nil, fmt.Errorf("range wants from:to")
			}
			return predicate.NewColumnValueIsBetween(ref, types.ParseCanonical(lo), types.ParseCanonical(hi))
		})
		if err != nil {
			return nil, err
		}
	}
	return preds, nil
}
