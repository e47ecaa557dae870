package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leengari/stripetable/internal/config"
	"github.com/leengari/stripetable/internal/engine"
	"github.com/leengari/stripetable/internal/logging"
	"github.com/leengari/stripetable/internal/metrics"
	"github.com/leengari/stripetable/internal/storage/manager"
	"github.com/leengari/stripetable/internal/storage/marshal"
)

// app holds what every command needs once flags and config are resolved
type app struct {
	configPath  string
	logLevel    string
	delimiter   string
	onError     string
	dumpMetrics bool

	cfg      config.Config
	logger   *slog.Logger
	closeLog func()
	metrics  *prometheus.Registry
	engine   *engine.Engine
}

func newRootCommand() *cobra.Command {
	a := &app{closeLog: func() {}}

	root := &cobra.Command{
		Use:           "stripetable",
		Short:         "Convert, query and store tables of cells",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer a.closeLog()
			if a.dumpMetrics {
				return a.writeMetrics(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "stripetable.yaml", "config file (defaults apply when missing)")
	flags.StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	flags.StringVar(&a.delimiter, "delimiter", "", "override csv.delimiter")
	flags.StringVar(&a.onError, "on-error", "", "override marshal.on_error (rethrow, continue)")
	flags.BoolVar(&a.dumpMetrics, "metrics", false, "print collected metrics to stderr on exit")

	root.AddCommand(
		newConvertCommand(a),
		newShowCommand(a),
		newSelectCommand(a),
		newIndexCommand(a),
		newStoreCommand(a),
		newConfigCommand(a),
	)
	return root
}

// setup loads the config, applies flag overrides and builds the engine
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.delimiter != "" {
		cfg.CSV.Delimiter = a.delimiter
	}
	if a.onError != "" {
		cfg.Marshal.OnError = a.onError
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, a.closeLog = logging.SetupLogger(cfg.Log)
	slog.SetDefault(a.logger)

	format, err := marshal.ParseFormat(cfg.Storage.Format)
	if err != nil {
		return err
	}
	opts := cfg.MarshalOptions(a.logger)
	a.metrics = prometheus.NewRegistry()
	a.engine = engine.New(
		engine.WithLogger(a.logger),
		engine.WithMarshalOptions(opts),
		engine.WithRegistry(manager.NewRegistry(cfg.Storage.BasePath, format, opts)),
		engine.WithObserver(engine.NewLoggingObserver(a.logger)),
		engine.WithObserver(metrics.NewObserver(a.metrics)),
	)

	a.logger.Debug("command starting",
		slog.String("command", cmd.CommandPath()),
		slog.String("config", a.configPath))
	return nil
}

func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.metrics.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// formatFlag parses an optional --from/--to value
func formatFlag(value string) (marshal.Format, error) {
	if value == "" {
		return "", nil
	}
	return marshal.ParseFormat(value)
}

func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return config.Write(path, config.Default())
}

func configYAML(cfg config.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
