// Package report formats benchmark results as key=value lines, markdown
// comparison tables and JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/weiihann/lebbench/harness"
)

// Line prefixes identifying records written by this tool.
const (
	HeaderPrefix = "leb128_fs_config"
	ResultPrefix = "leb128_fs"
)

// Header describes the configuration of a run.
type Header struct {
	DataDir    string
	Iterations int
	Scenarios  []string
}

// WriteHeader writes the single run-configuration line.
func WriteHeader(w io.Writer, h Header) error {
	_, err := fmt.Fprintf(w, "%s data_dir=%s iterations=%d scenarios=%s\n",
		HeaderPrefix,
		h.DataDir,
		h.Iterations,
		strings.Join(h.Scenarios, ","),
	)

	return err
}

// WriteLine writes one space-delimited key=value record for r.
func WriteLine(w io.Writer, r harness.Result) error {
	_, err := fmt.Fprintf(w,
		"%s scenario=%s impl=%s values=%d total_ns=%d "+
			"ns_per_value=%.6f avg_bytes_value=%.6f gib_per_s=%.6f\n",
		ResultPrefix,
		r.Scenario,
		r.Impl,
		r.Values,
		r.TotalNs,
		r.NsPerValue,
		r.AvgBytesPerValue,
		r.GiBPerSec,
	)

	return err
}

// Generate writes a markdown table for the given results. Each row carries
// its slowdown relative to the fastest implementation of the same scenario.
func Generate(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fastest := fastestByScenario(results)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Scenario | Impl | Values | Elapsed | ns/value "+
		"| bytes/value | GiB/s | Slowdown |")
	fmt.Fprintln(w, "|----------|------|--------|---------|----------"+
		"|-------------|-------|----------|")

	for _, r := range results {
		slowdown := 1.0
		if best := fastest[r.Scenario]; best > 0 && r.NsPerValue > 0 {
			slowdown = r.NsPerValue / best
		}

		fmt.Fprintf(w, "| %s | %s | %d | %s | %.3f | %.3f | %.3f | %.2fx |\n",
			r.Scenario,
			r.Impl,
			r.Values,
			formatNs(r.TotalNs),
			r.NsPerValue,
			r.AvgBytesPerValue,
			r.GiBPerSec,
			slowdown,
		)
	}

	return nil
}

type jsonResult struct {
	Scenario         string    `json:"scenario"`
	Impl             string    `json:"impl"`
	Values           uint64    `json:"values"`
	TotalNs          int64     `json:"total_ns"`
	NsPerValue       jsonFloat `json:"ns_per_value"`
	AvgBytesPerValue jsonFloat `json:"avg_bytes_value"`
	GiBPerSec        jsonFloat `json:"gib_per_s"`
}

// jsonFloat encodes NaN and infinities as strings, which encoding/json
// otherwise rejects.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(v, 'g', -1, 64)), nil
	}

	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// GenerateJSON writes results as JSON to w. Non-finite metrics are written
// as the strings "NaN", "+Inf" and "-Inf".
func GenerateJSON(w io.Writer, results []harness.Result) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{
			Scenario:         r.Scenario,
			Impl:             r.Impl,
			Values:           r.Values,
			TotalNs:          r.TotalNs,
			NsPerValue:       jsonFloat(r.NsPerValue),
			AvgBytesPerValue: jsonFloat(r.AvgBytesPerValue),
			GiBPerSec:        jsonFloat(r.GiBPerSec),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func fastestByScenario(results []harness.Result) map[string]float64 {
	fastest := make(map[string]float64)

	for _, r := range results {
		if !(r.NsPerValue > 0) {
			continue
		}

		if best, ok := fastest[r.Scenario]; !ok || r.NsPerValue < best {
			fastest[r.Scenario] = r.NsPerValue
		}
	}

	return fastest
}

func formatNs(ns int64) string {
	switch {
	case ns < 1_000:
		return fmt.Sprintf("%dns", ns)
	case ns < 1_000_000:
		return fmt.Sprintf("%.2fµs", float64(ns)/1e3)
	case ns < 1_000_000_000:
		return fmt.Sprintf("%.2fms", float64(ns)/1e6)
	default:
		return fmt.Sprintf("%.2fs", float64(ns)/1e9)
	}
}
