package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/storage/marshal"
)

func newStoreCommand(a *app) *cobra.Command {
	store := &cobra.Command{
		Use:   "store",
		Short: "Manage tables kept under storage.base_path",
	}

	var from, name string
	save := &cobra.Command{
		Use:   "save file",
		Short: "Import a table file into the store",
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
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			if err := a.engine.Registry().Create(name, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d rows, %d columns)\n", name, t.RowCount(), t.ColumnCount())
			return nil
		},
	}
	save.Flags().StringVar(&from, "from", "", "input format (default: from the file extension)")
	save.Flags().StringVar(&name, "name", "", "table name (default: the file name)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := a.engine.Registry()
			names, err := reg.List()
			if err != nil {
				return err
			}
			listing := table.New("tables")
			if err := listing.SetColumnTitles("name", "format", "rows", "columns", "saved_at"); err != nil {
				return err
			}
			for _, n := range names {
				meta, err := reg.Meta(n)
				if err != nil {
					return err
				}
				if err := listing.AddRow(meta.Name, meta.Format, meta.RowCount, meta.ColumnCount,
					meta.SavedAt.Format(time.RFC3339)); err != nil {
					return err
				}
			}
			return marshal.Render(listing, cmd.OutOrStdout())
		},
	}

	var to string
	show := &cobra.Command{
		Use:   "show name",
		Short: "Print a stored table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.engine.Registry().Get(args[0])
			if err != nil {
				return err
			}
			return a.output(t, to, cmd.OutOrStdout())
		},
	}
	show.Flags().StringVar(&to, "to", "", "output format (default: aligned text)")

	drop := &cobra.Command{
		Use:   "drop name",
		Short: "Delete a stored table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.engine.Registry().Drop(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", args[0])
			return nil
		},
	}

	rename := &cobra.Command{
		Use:   "rename old new",
		Short: "Rename a stored table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.engine.Registry().Rename(args[0], args[1])
		},
	}

	store.AddCommand(save, list, show, drop, rename)
	return store
}

func newConfigCommand(a *app) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default config to --config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeDefaultConfig(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := configYAML(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return cfgCmd
}
