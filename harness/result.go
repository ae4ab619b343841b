// Package harness replays LEB128 fixture streams through a decode strategy
// and derives throughput metrics from the timed runs.
package harness

import "time"

// Accumulator collects the raw totals of one (scenario, strategy) run.
type Accumulator struct {
	Elapsed time.Duration
	Bytes   uint64
}

// Result holds the derived metrics of one (scenario, strategy) run.
type Result struct {
	Scenario         string
	Impl             string
	Values           uint64
	TotalNs          int64
	NsPerValue       float64
	AvgBytesPerValue float64
	GiBPerSec        float64
}

const bytesPerGiB = 1 << 30

// Compute derives per-value and aggregate figures from a finished run.
// Zero values or zero elapsed time are not guarded and yield NaN or Inf.
func Compute(
	scenario, impl string,
	acc Accumulator,
	count uint64,
	iterations int,
) Result {
	totalValues := count * uint64(iterations)
	totalNs := acc.Elapsed.Nanoseconds()

	nsPerValue := float64(totalNs) / float64(totalValues)
	avgBytes := float64(acc.Bytes) / float64(totalValues)

	totalBytes := avgBytes * float64(totalValues)
	seconds := float64(totalNs) * 1e-9

	return Result{
		Scenario:         scenario,
		Impl:             impl,
		Values:           totalValues,
		TotalNs:          totalNs,
		NsPerValue:       nsPerValue,
		AvgBytesPerValue: avgBytes,
		GiBPerSec:        (totalBytes / bytesPerGiB) / seconds,
	}
}
