// Package config resolves benchmark settings from the process environment.
package config

import (
	"errors"
	"math"
	"os"
	"strconv"
)

// Environment variables read by Resolve.
const (
	EnvDataDir    = "FS_BENCH_DATA_DIR"
	EnvIterations = "ITERS"
	EnvCount      = "FUNC_COUNT"
	EnvSeed       = "FS_BENCH_SEED"
)

// Defaults applied when the optional variables are unset or invalid.
const (
	DefaultIterations = 20
	DefaultCount      = 1_000_000
	DefaultSeed       = 0x1234_5678_9ABC_DEF0
)

// ErrDataDirUnset is returned when the fixture directory is not configured.
var ErrDataDirUnset = errors.New(
	EnvDataDir + " is not set; it must point to the shared data directory",
)

// Config holds the resolved benchmark settings.
type Config struct {
	DataDir    string
	Iterations int
	Count      uint64
	Seed       uint64
}

// LookupFunc looks up a variable by name, reporting whether it is present.
type LookupFunc func(name string) (string, bool)

// FromEnv resolves a Config from the process environment.
func FromEnv() (Config, error) {
	return Resolve(os.LookupEnv)
}

// Resolve builds a Config using lookup. The data directory is required and
// an empty value counts as unset. Every other setting silently falls back
// to its default when absent, unparsable or zero.
func Resolve(lookup LookupFunc) (Config, error) {
	cfg := Optional(lookup)
	if cfg.DataDir == "" {
		return Config{}, ErrDataDirUnset
	}

	return cfg, nil
}

// Optional resolves every setting without enforcing the data directory,
// leaving DataDir empty when it is unset. Commands that take the directory
// from a flag start from this.
func Optional(lookup LookupFunc) Config {
	dir, _ := lookup(EnvDataDir)

	return Config{
		DataDir:    dir,
		Iterations: int(readUint(lookup, EnvIterations, DefaultIterations, math.MaxInt32)),
		Count:      readUint(lookup, EnvCount, DefaultCount, math.MaxUint64),
		Seed:       readUint(lookup, EnvSeed, DefaultSeed, math.MaxUint64),
	}
}

func readUint(lookup LookupFunc, name string, def, limit uint64) uint64 {
	s, ok := lookup(name)
	if !ok {
		return def
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 || v > limit {
		return def
	}

	return v
}
