package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/lebbench/harness"
	"github.com/weiihann/lebbench/report"
)

func newCompareCmd(logger *slog.Logger) *cobra.Command {
	var (
		dataDir    string
		iterations int
		execs      []string
		self       bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "compare [result-files...]",
		Short: "Compare ns/value across implementations",
		Long: `Collect key=value result lines from saved logs, from competing
benchmark binaries run against the same data directory (--exec name=path),
and optionally from an in-process run (--self), then print ns/value ratios
against the first source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg compareConfig

			if self || len(execs) > 0 {
				resolved, err := resolveConfig(cmd, dataDir, iterations)
				if err != nil {
					return err
				}

				cfg.dataDir = resolved.DataDir
				cfg.iterations = resolved.Iterations
			}

			cfg.files = args
			cfg.execs = execs
			cfg.self = self
			cfg.timeout = timeout

			return compareSources(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dataDir, "data-dir", "",
		"Fixture directory shared with external benchmarks")
	flags.IntVar(&iterations, "iters", 0,
		"Timed repetitions passed to every benchmark")
	flags.StringArrayVar(&execs, "exec", nil,
		"External benchmark as name=path (repeatable)")
	flags.BoolVar(&self, "self", false,
		"Include an in-process run as the baseline")
	flags.DurationVar(&timeout, "timeout", 30*time.Minute,
		"Timeout per external benchmark")

	return cmd
}

type compareConfig struct {
	dataDir    string
	iterations int
	files      []string
	execs      []string
	self       bool
	timeout    time.Duration
}

func compareSources(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg compareConfig,
) error {
	var sources []report.Source

	if cfg.self {
		results, err := runSelf(cfg.dataDir, cfg.iterations, logger)
		if err != nil {
			return fmt.Errorf("run lebbench: %w", err)
		}

		sources = append(sources, report.Source{Name: "lebbench", Results: results})
	}

	for _, path := range cfg.files {
		results, err := readResults(path)
		if err != nil {
			return err
		}

		sources = append(sources, report.Source{
			Name:    filepath.Base(path),
			Results: results,
		})
	}

	for _, spec := range cfg.execs {
		name, bin := parseExec(spec)

		ext := harness.NewExternal(name, bin, nil, nil, logger)
		results, err := ext.Run(ctx, harness.RunConfig{
			DataDir:    cfg.dataDir,
			Iterations: cfg.iterations,
			Timeout:    cfg.timeout,
		})
		if err != nil {
			return fmt.Errorf("run %s: %w", name, err)
		}

		sources = append(sources, report.Source{Name: name, Results: results})
	}

	return report.Compare(out, sources)
}

func runSelf(dataDir string, iterations int, logger *slog.Logger) ([]harness.Result, error) {
	suite := harness.NewSuite(dataDir, iterations, logger)

	var all []harness.Result

	for _, sc := range harness.Scenarios() {
		results, err := suite.RunScenario(sc)
		if err != nil {
			return nil, err
		}

		all = append(all, results...)
	}

	return all, nil
}

func readResults(path string) ([]harness.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()

	results, err := harness.ParseResults(f)
	if err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}

	return results, nil
}

// parseExec splits name=path; a bare path is named after its file.
func parseExec(spec string) (name, bin string) {
	if n, b, ok := strings.Cut(spec, "="); ok && n != "" {
		return n, b
	}

	return filepath.Base(spec), spec
}
