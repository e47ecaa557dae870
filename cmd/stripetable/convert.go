package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leengari/stripetable/internal/storage/marshal"
)

func newConvertCommand(a *app) *cobra.Command {
	var from, to, outDir string
	var jobs int

	cmd := &cobra.Command{
		Use:   "convert input... --to format",
		Short: "Convert table files between formats",
		Long: "Convert reads every input (format from --from or the file extension) and " +
			"writes it next to the input, or into --out-dir, with the extension of --to.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1, got %d", jobs)
			}
			src, err := formatFlag(from)
			if err != nil {
				return err
			}
			dst, err := marshal.ParseFormat(to)
			if err != nil {
				return err
			}

			outputs := make([]string, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)
			for i, in := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					out := outputPath(in, outDir, dst)
					if filepath.Clean(out) == filepath.Clean(in) {
						return fmt.Errorf("%s: output would overwrite the input", in)
					}
					t, err := a.engine.ReadFile(in, src)
					if err != nil {
						return err
					}
					if err := a.engine.WriteFile(t, out, dst); err != nil {
						return err
					}
					outputs[i] = out
					a.logger.Info("converted",
						slog.String("input", in),
						slog.String("output", out),
						slog.Int("rows", t.RowCount()))
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, in := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", in, outputs[i])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (default: from each file extension)")
	cmd.Flags().StringVar(&to, "to", "", "output format: "+formatList())
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (default: next to each input)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "files converted at once")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func outputPath(in, outDir string, f marshal.Format) string {
	base := filepath.Base(in)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + "." + f.Ext()
	if outDir == "" {
		outDir = filepath.Dir(in)
	}
	return filepath.Join(outDir, base)
}

func formatList() string {
	names := make([]string, 0, len(marshal.Formats()))
	for _, f := range marshal.Formats() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
