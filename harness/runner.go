package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"github.com/weiihann/lebbench/fixture"
	"github.com/weiihann/lebbench/varint"
)

// Strategy selects the decode entry point replayed by Run.
type Strategy uint8

const (
	// Unchecked advances a raw pointer and relies on the stream padding.
	Unchecked Strategy = iota
	// Checked validates the remaining length on every decode.
	Checked
)

func (s Strategy) String() string {
	switch s {
	case Unchecked:
		return "unchecked"
	case Checked:
		return "checked"
	default:
		return "unknown"
	}
}

// Strategies returns the strategies in the order each scenario runs them.
func Strategies() []Strategy {
	return []Strategy{Unchecked, Checked}
}

var (
	// ErrLengthMismatch is returned when decoding the declared number of
	// values does not consume exactly the logical stream length.
	ErrLengthMismatch = errors.New("decoded length does not match stream length")
	// ErrUnpadded is returned when a stream lacks the trailing padding the
	// unchecked strategy reads into.
	ErrUnpadded = errors.New("stream is not padded")
)

// sink receives the folded decode results. Storing to a package variable
// keeps the decode loops observable to the compiler.
var sink uint64

// Run replays s through dec iterations times using strategy. Only the decode
// loop is timed. A checked decode failure or a length mismatch aborts the
// run with an error.
func Run(
	dec varint.Decoder,
	s *fixture.Stream,
	iterations int,
	strategy Strategy,
) (Accumulator, error) {
	if len(s.Data) < s.Len+varint.Padding {
		return Accumulator{}, fmt.Errorf(
			"%w: %d bytes for %d logical", ErrUnpadded, len(s.Data), s.Len,
		)
	}

	switch strategy {
	case Unchecked:
		return runUnchecked(dec, s, iterations)
	case Checked:
		return runChecked(dec, s, iterations)
	default:
		return Accumulator{}, fmt.Errorf("unknown strategy %d", strategy)
	}
}

func runUnchecked(
	dec varint.Decoder,
	s *fixture.Stream,
	iterations int,
) (Accumulator, error) {
	var (
		acc Accumulator
		sum uint64
	)

	if err := validate(dec, s); err != nil {
		return acc, err
	}

	base := unsafe.Pointer(unsafe.SliceData(s.Data))

	for range iterations {
		p := base

		start := time.Now()
		for range s.Count {
			v, n := dec.DecodeUnchecked(p)
			sum += v
			p = unsafe.Add(p, n)
		}
		elapsed := time.Since(start)

		consumed := int(uintptr(p) - uintptr(base))
		if consumed != s.Len {
			return acc, fmt.Errorf(
				"%w: consumed %d of %d bytes", ErrLengthMismatch, consumed, s.Len,
			)
		}

		acc.Elapsed += elapsed
		acc.Bytes += uint64(s.Len)
	}

	sink = sum

	return acc, nil
}

// validate walks the payload once with the checked decoder, untimed. A
// stream that passes decodes Count values in exactly Len bytes, so the
// unchecked cursor never moves past the logical end and every load stays
// inside the padding.
func validate(dec varint.Decoder, s *fixture.Stream) error {
	payload := s.Payload()
	rest := payload

	for i := range s.Count {
		_, n, err := dec.Decode(rest)
		if err != nil {
			return fmt.Errorf(
				"validate value %d at offset %d: %w",
				i, len(payload)-len(rest), err,
			)
		}
		rest = rest[n:]
	}

	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrLengthMismatch, len(rest))
	}

	return nil
}

func runChecked(
	dec varint.Decoder,
	s *fixture.Stream,
	iterations int,
) (Accumulator, error) {
	var (
		acc Accumulator
		sum uint64
	)

	payload := s.Payload()

	for range iterations {
		rest := payload

		start := time.Now()
		for i := range s.Count {
			v, n, err := dec.Decode(rest)
			if err != nil {
				return acc, fmt.Errorf(
					"decode value %d at offset %d: %w",
					i, len(payload)-len(rest), err,
				)
			}
			sum += v
			rest = rest[n:]
		}
		elapsed := time.Since(start)

		if len(rest) != 0 {
			return acc, fmt.Errorf(
				"%w: %d trailing bytes", ErrLengthMismatch, len(rest),
			)
		}

		acc.Elapsed += elapsed
		acc.Bytes += uint64(s.Len)
	}

	sink = sum

	return acc, nil
}

// Suite benchmarks scenarios from a fixture directory.
type Suite struct {
	DataDir    string
	Iterations int
	Logger     *slog.Logger

	// Decoders picks the decoder for a scenario. Nil uses the built-in
	// decoder for the scenario's width.
	Decoders func(Scenario) varint.Decoder
}

// NewSuite creates a Suite reading fixtures from dataDir.
func NewSuite(dataDir string, iterations int, logger *slog.Logger) *Suite {
	return &Suite{
		DataDir:    dataDir,
		Iterations: iterations,
		Logger:     logger,
	}
}

// RunScenario loads the scenario's fixture and benchmarks it under every
// strategy, unchecked first. The stream is dropped once both runs finish.
func (s *Suite) RunScenario(sc Scenario) ([]Result, error) {
	stream, err := fixture.Load(s.DataDir, sc.Name)
	if err != nil {
		return nil, err
	}

	logger := s.Logger.With(slog.String("scenario", sc.Name))

	logger.Info("fixture loaded",
		slog.String("path", stream.Path),
		slog.Uint64("values", stream.Count),
		slog.Int("bytes", stream.Len),
		slog.String("digest", stream.Digest.String()),
	)

	dec := sc.Decoder()
	if s.Decoders != nil {
		dec = s.Decoders(sc)
	}

	results := make([]Result, 0, len(Strategies()))

	for _, strategy := range Strategies() {
		acc, err := Run(dec, stream, s.Iterations, strategy)
		if err != nil {
			return nil, fmt.Errorf(
				"scenario %s %s run: %w", sc.Name, strategy, err,
			)
		}

		logger.Debug("run finished",
			slog.String("impl", strategy.String()),
			slog.Duration("elapsed", acc.Elapsed),
		)

		results = append(results, Compute(
			sc.Name, strategy.String(), acc, stream.Count, s.Iterations,
		))
	}

	return results, nil
}
