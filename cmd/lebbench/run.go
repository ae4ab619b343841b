package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiihann/lebbench/config"
	"github.com/weiihann/lebbench/harness"
	"github.com/weiihann/lebbench/report"
)

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		dataDir    string
		iterations int
		scenarios  []string
		outputJSON bool
		table      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark checked and unchecked decoding over shared fixtures",
		Long: `Load <data-dir>/<scenario>.bin for every scenario and time the
unchecked and the checked decoder over it. The data directory and iteration
count default to FS_BENCH_DATA_DIR and ITERS.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, dataDir, iterations)
			if err != nil {
				return err
			}

			// Stdout carries only the result lines unless --table is set.
			// Interactive runs get the table on stderr instead.
			var summary io.Writer
			switch {
			case table:
				summary = cmd.OutOrStdout()
			case !outputJSON && isTerminal(os.Stderr):
				summary = cmd.ErrOrStderr()
			}

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), runConfig{
				dataDir:    cfg.DataDir,
				iterations: cfg.Iterations,
				scenarios:  scenarios,
				outputJSON: outputJSON,
				summary:    summary,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dataDir, "data-dir", "",
		"Fixture directory (default: $"+config.EnvDataDir+")")
	flags.IntVar(&iterations, "iters", 0,
		fmt.Sprintf("Timed repetitions per scenario and strategy (default: $%s or %d)",
			config.EnvIterations, config.DefaultIterations))
	flags.StringSliceVar(&scenarios, "scenarios", nil,
		"Scenarios to run (default: all)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of key=value lines")
	flags.BoolVar(&table, "table", false,
		"Append a markdown summary table to stdout")

	return cmd
}

// resolveConfig applies flag overrides on top of the environment. The data
// directory is required from one or the other.
func resolveConfig(cmd *cobra.Command, dataDir string, iterations int) (config.Config, error) {
	cfg := config.Optional(os.LookupEnv)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if cfg.DataDir == "" {
		return config.Config{}, config.ErrDataDirUnset
	}

	if cmd.Flags().Changed("iters") {
		if iterations < 0 {
			return config.Config{}, fmt.Errorf(
				"--iters must not be negative, got %d", iterations,
			)
		}

		cfg.Iterations = iterations
	}

	return cfg, nil
}

type runConfig struct {
	dataDir    string
	iterations int
	scenarios  []string
	outputJSON bool
	// summary receives the markdown table; nil skips it.
	summary io.Writer
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg runConfig,
) error {
	scenarios, err := harness.SelectScenarios(cfg.scenarios)
	if err != nil {
		return err
	}

	// Fail on missing fixtures before any timing starts.
	for _, sc := range scenarios {
		path := harness.ResolveFixture(cfg.dataDir, sc)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf(
				"data file %s for scenario %s: %w", path, sc.Name, err,
			)
		}
	}

	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("data_dir", cfg.dataDir),
		slog.Int("iterations", cfg.iterations),
		slog.Any("scenarios", names),
	)

	if cfg.iterations == 0 {
		logger.WarnContext(ctx, "zero iterations; metrics will be NaN")
	}

	if !cfg.outputJSON {
		if err := report.WriteHeader(out, report.Header{
			DataDir:    cfg.dataDir,
			Iterations: cfg.iterations,
			Scenarios:  names,
		}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	suite := harness.NewSuite(cfg.dataDir, cfg.iterations, logger)
	all := make([]harness.Result, 0, 2*len(scenarios))

	for _, sc := range scenarios {
		results, err := suite.RunScenario(sc)
		if err != nil {
			return err
		}

		if !cfg.outputJSON {
			for _, r := range results {
				if err := report.WriteLine(out, r); err != nil {
					return fmt.Errorf("write result: %w", err)
				}
			}
		}

		all = append(all, results...)
	}

	switch {
	case cfg.outputJSON:
		if err := report.GenerateJSON(out, all); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	case cfg.summary != nil:
		fmt.Fprintln(cfg.summary)

		if err := report.Generate(cfg.summary, all); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}
