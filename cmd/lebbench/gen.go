package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/weiihann/lebbench/config"
	"github.com/weiihann/lebbench/harness"
	"github.com/weiihann/lebbench/workload"
)

func newGenCmd(logger *slog.Logger) *cobra.Command {
	var (
		dataDir   string
		count     uint64
		seed      uint64
		scenarios []string
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate shared fixture files for every scenario",
		Long: `Write one deterministic <scenario>.bin per scenario into the data
directory. Values are drawn uniformly from each scenario's range using the
given seed, so repeated runs produce identical files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Optional(os.LookupEnv)

			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if cfg.DataDir == "" {
				return config.ErrDataDirUnset
			}
			if cmd.Flags().Changed("count") {
				cfg.Count = count
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}

			selected, err := harness.SelectScenarios(scenarios)
			if err != nil {
				return err
			}

			return generateFixtures(cmd.Context(), logger, cfg, selected)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dataDir, "data-dir", "",
		"Output directory (default: $"+config.EnvDataDir+")")
	flags.Uint64Var(&count, "count", config.DefaultCount,
		"Values per fixture (default: $"+config.EnvCount+")")
	flags.Uint64Var(&seed, "seed", config.DefaultSeed,
		"Random seed (default: $"+config.EnvSeed+")")
	flags.StringSliceVar(&scenarios, "scenarios", nil,
		"Scenarios to generate (default: all)")

	return cmd
}

func generateFixtures(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	scenarios []harness.Scenario,
) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	for _, sc := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return generateFixture(ctx, logger, cfg, sc)
		})
	}

	return g.Wait()
}

func generateFixture(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	sc harness.Scenario,
) error {
	path := harness.ResolveFixture(cfg.DataDir, sc)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	gen := workload.NewGenerator(workload.Config{
		Bound: sc.Bound,
		Count: cfg.Count,
		Seed:  int64(cfg.Seed),
	})

	summary, err := gen.Generate(f)
	if err != nil {
		f.Close()
		os.Remove(path)

		return fmt.Errorf("generate %s: %w", sc.Name, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	logger.InfoContext(ctx, "fixture generated",
		slog.String("scenario", sc.Name),
		slog.String("path", path),
		slog.Uint64("values", summary.Values),
		slog.Int("bytes", summary.Bytes),
		slog.Uint64("multi_byte", summary.MultiByte),
		slog.Float64("avg_bytes_value", summary.AvgBytesPerValue()),
		slog.String("digest", summary.Digest.String()),
	)

	return nil
}
