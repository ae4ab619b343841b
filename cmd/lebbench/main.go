// Package main provides the CLI entry point for lebbench, a throughput
// benchmark for checked and unchecked LEB128 decoding over shared fixtures.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("lebbench failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "lebbench",
		Short: "LEB128 decode throughput benchmark",
		Long: `Lebbench replays pre-generated LEB128 streams through a bounds-checked
and an unchecked decoder for 8-bit and 16-bit widths and reports per-value
latency and throughput. Fixtures are shared so results can be compared across
runs and against competing implementations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newGenCmd(logger))
	root.AddCommand(newCompareCmd(logger))

	return root
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
