// Uvarint harness benchmarks encoding/binary's Uvarint over the shared
// fixture directory and prints key=value result lines to stdout, so it can
// be compared against lebbench with `lebbench compare --exec`.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/weiihann/lebbench/config"
	"github.com/weiihann/lebbench/harness"
	"github.com/weiihann/lebbench/report"
	"github.com/weiihann/lebbench/varint"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fatal("%v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	suite := harness.NewSuite(cfg.DataDir, cfg.Iterations, logger)
	suite.Decoders = func(sc harness.Scenario) varint.Decoder {
		return uvarintDecoder{width: sc.Width}
	}

	if err := report.WriteHeader(os.Stdout, report.Header{
		DataDir:    cfg.DataDir,
		Iterations: cfg.Iterations,
		Scenarios:  harness.ScenarioNames(),
	}); err != nil {
		fatal("write header: %v", err)
	}

	for _, sc := range harness.Scenarios() {
		results, err := suite.RunScenario(sc)
		if err != nil {
			fatal("%v", err)
		}

		for _, r := range results {
			if err := report.WriteLine(os.Stdout, r); err != nil {
				fatal("write result: %v", err)
			}
		}
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "uvarint-harness: "+format+"\n", args...)
	os.Exit(1)
}
