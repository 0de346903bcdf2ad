// cmd/wrangle/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/property-wrangle/pkg/acquire"
	"github.com/David-Botos/property-wrangle/pkg/config"
	"github.com/David-Botos/property-wrangle/pkg/connector"
	"github.com/David-Botos/property-wrangle/pkg/logging"
	"github.com/David-Botos/property-wrangle/pkg/wrangle"
)

var (
	envFile   string
	cachePath string
	outputDir string
	offline   bool
	seed      int64
	outlierK  float64
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "wrangle",
	Short: "Acquire, clean and split the property valuation dataset",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline and write train, validate and test partitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		runner, err := wrangle.NewRunner(newSource(cfg, logger), cfg.Cleaning, logger)
		if err != nil {
			return err
		}
		result, err := runner.Run(ctx)
		pushMetrics(ctx, cfg, logger, runner.LastMetrics())
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		if err := wrangle.WritePartitions(cfg.OutputDir, result); err != nil {
			return err
		}

		train, validate, test := result.Partitions().Sizes()
		logger.Info("Wrote partitions",
			zap.String("runID", result.RunID),
			zap.String("dir", cfg.OutputDir),
			zap.Int("train", train),
			zap.Int("validate", validate),
			zap.Int("test", test))
		fmt.Fprint(cmd.OutOrStdout(), result.Metrics.GenerateMetricsReport())
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print column, row and numeric summaries of the acquired table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		t, err := newSource(cfg, logger).Acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquisition failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if err := acquire.Summarize(out, t); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nCOLUMNS MISSING\n  %-32s %16s %16s\n", "columns", "num_rows_missing", "pct_rows_missing")
		for _, c := range acquire.ColumnsData(t) {
			fmt.Fprintf(out, "  %-32s %16d %16.4f\n", c.Column, c.NumRowsMissing, c.PctRowsMissing)
		}
		fmt.Fprintf(out, "\nROWS MISSING\n  %16s %16s %16s\n", "num_cols_missing", "num_rows", "pct_cols_missing")
		for _, r := range acquire.RowData(t) {
			fmt.Fprintf(out, "  %16d %16d %16.4f\n", r.NumColsMissing, r.NumRows, r.PctColsMissing)
		}
		return nil
	},
}

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Print the diagnostic outlier removal thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		runner, err := wrangle.NewRunner(newSource(cfg, logger), cfg.Cleaning, logger)
		if err != nil {
			return err
		}
		thresholds, err := runner.Thresholds(ctx)
		if err != nil {
			return fmt.Errorf("threshold computation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-40s %16s\n", "column", "threshold")
		for _, th := range thresholds {
			fmt.Fprintf(out, "%-40s %16.0f\n", th.Column, th.Value)
		}
		return nil
	},
}

// setup loads configuration, applies flag overrides and builds the logger
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.LoadConfig(envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("cache") {
		cfg.CachePath = cachePath
	}
	if flags.Changed("out") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("seed") {
		cfg.Cleaning.Seed = seed
	}
	if flags.Changed("k") {
		cfg.Cleaning.OutlierK = outlierK
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// pushMetrics sends run metrics to the Pushgateway when one is configured.
// A failed push is logged, never fatal.
func pushMetrics(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *wrangle.RunMetrics) {
	if cfg.PushgatewayURL == "" || m == nil {
		return
	}
	if err := m.Push(ctx, cfg.PushgatewayURL, cfg.PushgatewayJob); err != nil {
		logger.Warn("Failed to push metrics", zap.Error(err))
	}
}

// newSource reads the cache only when offline, otherwise fills the cache
// from the configured database on a miss
func newSource(cfg *config.Config, logger *zap.Logger) acquire.Source {
	if offline {
		return acquire.NewFileSource(cfg.CachePath, logger)
	}
	factory := connector.NewConnectorFactory(cfg.Database, logger)
	remote := acquire.NewDatabaseSource(factory.Create, cfg.Database.LookupSchema(), cfg.Database.QueryTimeout, logger)
	return acquire.NewCachedSource(cfg.CachePath, remote, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to a .env file (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "CSV cache of the extract")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Read the cache only, never connect to the database")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", config.DefaultSeed, "Seed of the train/validate/test split")
	rootCmd.PersistentFlags().Float64Var(&outlierK, "k", config.DefaultOutlierK, "IQR multiplier of the upper outlier fence")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 30*time.Minute, "Timeout for the whole operation")
	runCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Directory the partitions and report are written to")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(thresholdsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
