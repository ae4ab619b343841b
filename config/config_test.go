package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(env(map[string]string{EnvDataDir: "/data"}))
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, DefaultIterations, cfg.Iterations)
	assert.Equal(t, uint64(DefaultCount), cfg.Count)
	assert.Equal(t, uint64(DefaultSeed), cfg.Seed)
}

func TestResolveDataDirRequired(t *testing.T) {
	for _, vars := range []map[string]string{
		{},
		{EnvDataDir: ""},
		{EnvIterations: "5"},
	} {
		_, err := Resolve(env(vars))
		require.ErrorIs(t, err, ErrDataDirUnset)
		assert.Contains(t, err.Error(), EnvDataDir)
	}
}

func TestResolveIterations(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"valid", "7", 7},
		{"large", "100000", 100000},
		{"zero", "0", DefaultIterations},
		{"negative", "-3", DefaultIterations},
		{"garbage", "abc", DefaultIterations},
		{"trailing junk", "12x", DefaultIterations},
		{"empty", "", DefaultIterations},
		{"too large", "99999999999999999999", DefaultIterations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Resolve(env(map[string]string{
				EnvDataDir:    "/data",
				EnvIterations: tt.value,
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Iterations)
		})
	}
}

func TestResolveGeneratorSettings(t *testing.T) {
	cfg, err := Resolve(env(map[string]string{
		EnvDataDir: "/data",
		EnvCount:   "1000",
		EnvSeed:    "42",
	}))
	require.NoError(t, err)

	assert.Equal(t, uint64(1000), cfg.Count)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestOptionalWithoutDataDir(t *testing.T) {
	cfg := Optional(env(map[string]string{EnvIterations: "3"}))

	assert.Empty(t, cfg.DataDir)
	assert.Equal(t, 3, cfg.Iterations)
}
