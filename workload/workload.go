// Package workload generates deterministic LEB128 fixture streams. Each
// fixture holds values drawn uniformly from a scenario's value range, so
// every implementation benchmarked against it decodes the same bytes.
package workload

import (
	"fmt"
	"io"
	mrand "math/rand"

	"github.com/opencontainers/go-digest"

	"github.com/weiihann/lebbench/fixture"
	"github.com/weiihann/lebbench/varint"
)

// Summary contains statistics about a generated fixture.
type Summary struct {
	Values    uint64
	Bytes     int
	OneByte   uint64
	MultiByte uint64
	Digest    digest.Digest
}

// AvgBytesPerValue returns the mean encoded length.
func (s Summary) AvgBytesPerValue() float64 {
	return float64(s.Bytes) / float64(s.Values)
}

// Config controls fixture generation parameters.
type Config struct {
	// Bound is the exclusive upper limit of generated values.
	Bound uint32
	Count uint64
	Seed  int64
}

// Generator produces deterministic fixtures from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate writes a fixture to w and returns a Summary. The payload is
// built in memory first since the header carries the value count.
func (g *Generator) Generate(w io.Writer) (Summary, error) {
	if g.cfg.Bound == 0 {
		return Summary{}, fmt.Errorf("bound must be positive")
	}

	var summary Summary

	// Reserve assuming one to two bytes per value.
	payload := make([]byte, 0, g.cfg.Count*2)

	for range g.cfg.Count {
		v := uint64(g.rng.Int63n(int64(g.cfg.Bound)))
		payload = varint.AppendUint(payload, v)

		if v < 0x80 {
			summary.OneByte++
		} else {
			summary.MultiByte++
		}
	}

	summary.Values = g.cfg.Count
	summary.Bytes = len(payload)

	digester := digest.Canonical.Digester()
	out := io.MultiWriter(w, digester.Hash())

	if err := fixture.Write(out, g.cfg.Count, payload); err != nil {
		return summary, fmt.Errorf("write fixture: %w", err)
	}

	summary.Digest = digester.Digest()

	return summary, nil
}
