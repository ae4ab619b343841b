package harness

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/weiihann/lebbench/config"
)

// RunConfig holds parameters for a single external benchmark execution.
type RunConfig struct {
	DataDir    string
	Iterations int
	Timeout    time.Duration
}

// External launches a competing benchmark binary against the same fixture
// directory and collects its key=value result lines.
type External struct {
	Name       string
	BinaryPath string
	ExtraArgs  []string
	Env        []string
	Logger     *slog.Logger
}

// NewExternal creates an External for the named implementation. Env is
// appended to the inherited environment.
func NewExternal(
	name, binaryPath string,
	extraArgs, env []string,
	logger *slog.Logger,
) *External {
	return &External{
		Name:       name,
		BinaryPath: binaryPath,
		ExtraArgs:  extraArgs,
		Env:        env,
		Logger:     logger.With(slog.String("impl", name)),
	}
}

// Run executes the binary with the shared data directory and iteration count
// exported and returns the parsed results.
func (e *External) Run(ctx context.Context, cfg RunConfig) ([]Result, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.BinaryPath, e.ExtraArgs...)

	cmd.Env = append(os.Environ(), e.Env...)
	cmd.Env = append(cmd.Env,
		config.EnvDataDir+"="+cfg.DataDir,
		config.EnvIterations+"="+strconv.Itoa(cfg.Iterations),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.Logger.Info("starting external benchmark",
		slog.String("binary", e.BinaryPath),
		slog.String("data_dir", cfg.DataDir),
	)

	wallStart := time.Now()

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"benchmark %s failed: %w\nstderr: %s",
			e.Name, err, stderr.String(),
		)
	}

	e.Logger.Info("external benchmark finished",
		slog.Duration("wall_time", time.Since(wallStart)),
	)

	results, err := ParseResults(&stdout)
	if err != nil {
		return nil, fmt.Errorf(
			"parse %s output: %w\nstdout: %s",
			e.Name, err, stdout.String(),
		)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("benchmark %s produced no result lines", e.Name)
	}

	return results, nil
}

// ParseResults reads key=value result lines. Lines without scenario, impl
// and ns_per_value fields are skipped, so banners and logs may be mixed in.
func ParseResults(r io.Reader) ([]Result, error) {
	var results []Result

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		fields := parseFields(scanner.Text())
		if fields["scenario"] == "" || fields["impl"] == "" {
			continue
		}
		if _, ok := fields["ns_per_value"]; !ok {
			continue
		}

		result, err := resultFromFields(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		results = append(results, result)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan results: %w", err)
	}

	return results, nil
}

func parseFields(line string) map[string]string {
	fields := make(map[string]string)

	for _, tok := range strings.Fields(line) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}

		fields[key] = value
	}

	return fields
}

func resultFromFields(fields map[string]string) (Result, error) {
	result := Result{
		Scenario: fields["scenario"],
		Impl:     fields["impl"],
	}

	var err error

	if s, ok := fields["values"]; ok {
		if result.Values, err = strconv.ParseUint(s, 10, 64); err != nil {
			return result, fmt.Errorf("values: %w", err)
		}
	}

	if s, ok := fields["total_ns"]; ok {
		if result.TotalNs, err = strconv.ParseInt(s, 10, 64); err != nil {
			return result, fmt.Errorf("total_ns: %w", err)
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"ns_per_value", &result.NsPerValue},
		{"avg_bytes_value", &result.AvgBytesPerValue},
		{"gib_per_s", &result.GiBPerSec},
	}

	for _, f := range floats {
		s, ok := fields[f.key]
		if !ok {
			continue
		}

		if *f.dst, err = strconv.ParseFloat(s, 64); err != nil {
			return result, fmt.Errorf("%s: %w", f.key, err)
		}
	}

	return result, nil
}
