package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/query/indexing"
	"github.com/leengari/stripetable/internal/storage/marshal"
	"github.com/leengari/stripetable/internal/util/types"
)

func newShowCommand(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "show file",
		Short: "Print a table file as aligned text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFlag(from)
			if err != nil {
				return err
			}
			t, err := a.engine.ReadFile(args[0], f)
			if err != nil {
				return err
			}
			return marshal.Render(t, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format (default: from the file extension)")
	return cmd
}

func newSelectCommand(a *app) *cobra.Command {
	var (
		from, to, joinFile, on, indexCol string
		where, in, between               []string
		columns                          []string
	)

	cmd := &cobra.Command{
		Use:   "select file",
		Short: "Filter, join and project a table file",
		Long: "Columns are named by title, or as table.title once a join is involved. " +
			"Values are parsed like unmarshalled cells, so --where id=2 matches the number 2.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := formatFlag(from)
			if err != nil {
				return err
			}
			base, err := a.engine.ReadFile(args[0], src)
			if err != nil {
				return err
			}
			tables := []*table.Table{base}

			q := a.engine.Select(base)
			if joinFile != "" {
				other, err := a.engine.ReadFile(joinFile, src)
				if err != nil {
					return err
				}
				tables = append(tables, other)
				left, right, ok := strings.Cut(on, "=")
				if !ok {
					return fmt.Errorf("--on wants left=right, got %q", on)
				}
				l, err := resolveColumn(tables, left)
				if err != nil {
					return err
				}
				r, err := resolveColumn(tables, right)
				if err != nil {
					return err
				}
				q = q.Join(other).OnEqual(l, r)
			}

			preds, err := buildPredicates(tables, where, in, between)
			if err != nil {
				return err
			}
			if len(preds) > 0 {
				q = q.Where(preds...)
			}

			if indexCol != "" {
				ref, err := resolveColumn(tables[:1], indexCol)
				if err != nil {
					return err
				}
				kind, err := indexing.ParseKind(a.cfg.Index.Kind)
				if err != nil {
					return err
				}
				idx, err := a.engine.BuildIndex(base, ref.Index, kind)
				if err != nil {
					return err
				}
				q = q.UseIndex(idx)
			}

			if len(columns) > 0 {
				refs := make([]table.ColumnRef, 0, len(columns))
				for _, c := range columns {
					ref, err := resolveColumn(tables, c)
					if err != nil {
						return err
					}
					refs = append(refs, ref)
				}
				q = q.Columns(refs...)
			}

			result, err := a.engine.ExecuteContext(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.output(result, to, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&from, "from", "", "input format (default: from the file extension)")
	flags.StringVar(&to, "to", "", "output format (default: aligned text)")
	flags.StringArrayVar(&where, "where", nil, "col=value equality, repeatable")
	flags.StringArrayVar(&in, "in", nil, "col=a,b,c membership, repeatable")
	flags.StringArrayVar(&between, "between", nil, "col=from:to closed range, repeatable")
	flags.StringSliceVar(&columns, "columns", nil, "columns to keep, in order")
	flags.StringVar(&joinFile, "join", "", "table file to inner join with")
	flags.StringVar(&on, "on", "", "join condition left=right")
	flags.StringVar(&indexCol, "index", "", "build an index on this base column and use it")
	return cmd
}

func newIndexCommand(a *app) *cobra.Command {
	var (
		from, column, key, rangeFrom, rangeTo string
		sorted                                bool
	)

	cmd := &cobra.Command{
		Use:   "index file --column col (--key k | --from a --to b)",
		Short: "Build an index over one column and look rows up with it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := formatFlag(from)
			if err != nil {
				return err
			}
			t, err := a.engine.ReadFile(args[0], src)
			if err != nil {
				return err
			}
			ref, err := resolveColumn([]*table.Table{t}, column)
			if err != nil {
				return err
			}

			kind, err := indexing.ParseKind(a.cfg.Index.Kind)
			if err != nil {
				return err
			}
			if sorted {
				kind = indexing.KindSorted
			}
			idx, err := a.engine.BuildIndex(t, ref.Index, kind)
			if err != nil {
				return err
			}

			var rows []int
			switch {
			case cmd.Flags().Changed("key"):
				rows, err = idx.ContainingElement(types.ParseCanonical(key))
			case rangeFrom != "" || rangeTo != "":
				rows, err = idx.ForRange(types.ParseCanonical(rangeFrom), types.ParseCanonical(rangeTo))
			default:
				return fmt.Errorf("one of --key or --range-from/--range-to is required")
			}
			if err != nil {
				return err
			}
			return printRows(cmd.OutOrStdout(), t, rows)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&from, "from", "", "input format (default: from the file extension)")
	flags.StringVar(&column, "column", "", "column title or #index")
	flags.StringVar(&key, "key", "", "equality lookup")
	flags.StringVar(&rangeFrom, "range-from", "", "closed range lower bound")
	flags.StringVar(&rangeTo, "range-to", "", "closed range upper bound")
	flags.BoolVar(&sorted, "sorted", false, "build a sorted index (needed for ranges)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

// output renders t, or marshals it when a format is given
func (a *app) output(t *table.Table, to string, w io.Writer) error {
	if to == "" {
		return marshal.Render(t, w)
	}
	f, err := marshal.ParseFormat(to)
	if err != nil {
		return err
	}
	opts := a.engine.MarshalOptions()
	opts.IncludeColumnTitles = true
	return a.engine.Marshal(t, f, w, opts)
}

func printRows(w io.Writer, t *table.Table, rows []int) error {
	for _, r := range rows {
		values, err := t.Row(r)
		if err != nil {
			return err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = types.String(v)
		}
		fmt.Fprintf(w, "%d\t%s\n", r, strings.Join(cells, "\t"))
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}
