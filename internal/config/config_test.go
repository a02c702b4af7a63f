package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfvs/fvsbatch/internal/params"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fvsbatch.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

const validConfig = `
[batch]
seed = 1234
n_samples = 50
n_workers = 8
output_base = "outputs/test"
simulate_timeout = "5m"
batch_deadline = "2h"
plot_ids = [1, 2]

[[parameters]]
type = "uniform"
name = "thin_q_factor"
min = 1.1
max = 1.6

[[parameters]]
type = "boolean"
name = "enable_calibration"
probability_true = 0.5

[[parameters]]
type = "discrete_uniform"
name = "fvs_random_seed"
min = 1
max = 99999

[simulation]
name = "wenatchee"
num_years = 80
cycle_length = 10
output_carbon = true
compute_canopy_cover = true

[simulator]
binary = "/opt/fvs/FVSpn"
compiler_command = "/opt/fvs/keygen"
inventory_db = "data/inventory.db"

[logging]
level = "debug"
format = "text"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Batch.Seed)
	assert.Equal(t, 100, cfg.Batch.NSamples)
	assert.Equal(t, 4, cfg.Batch.NWorkers)
	assert.Equal(t, 10*time.Minute, cfg.Batch.SimulateTimeout.Duration)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, validConfig)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(1234), cfg.Batch.Seed)
	assert.Equal(t, 50, cfg.Batch.NSamples)
	assert.Equal(t, 8, cfg.Batch.NWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Batch.SimulateTimeout.Duration)
	assert.Equal(t, 2*time.Hour, cfg.Batch.BatchDeadline.Duration)
	assert.Equal(t, []int{1, 2}, cfg.Batch.PlotIDs)
	assert.Len(t, cfg.Parameters, 3)
	assert.Equal(t, "wenatchee", cfg.Simulation.Name)
	assert.Equal(t, 80, cfg.Simulation.NumYears)
	assert.Equal(t, "/opt/fvs/FVSpn", cfg.Simulator.Binary)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/fvsbatch.toml")
	require.Error(t, err)
}

func TestToBatchConfig(t *testing.T) {
	path := writeConfigFile(t, validConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	bc, err := cfg.ToBatchConfig()
	require.NoError(t, err)

	assert.Equal(t, int64(1234), bc.Seed)
	assert.Equal(t, 50, bc.NSamples)
	require.Len(t, bc.Specs, 3)

	uniform, ok := bc.Specs[0].(params.UniformSpec)
	require.True(t, ok)
	assert.Equal(t, params.ParamThinQFactor, uniform.ParamName)
	assert.Equal(t, 1.1, uniform.Min)

	discrete, ok := bc.Specs[2].(params.DiscreteUniformSpec)
	require.True(t, ok)
	assert.Equal(t, 99999, discrete.Max)

	assert.Equal(t, 80, bc.BaseConfig.NumYears)
	assert.Equal(t, "/opt/fvs/FVSpn", bc.BaseConfig.Binary)
	assert.Equal(t, 5*time.Minute, bc.SimulateTimeout)

	// The assembled batch config passes the sampler's own validation.
	_, err = params.GenerateSamples(bc)
	require.NoError(t, err)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "zero samples",
			mutate: func(c *Config) { c.Batch.NSamples = 0 },
		},
		{
			name:   "zero workers",
			mutate: func(c *Config) { c.Batch.NWorkers = 0 },
		},
		{
			name:   "no parameters",
			mutate: func(c *Config) { c.Parameters = nil },
		},
		{
			name:   "unknown spec type",
			mutate: func(c *Config) { c.Parameters[0].Type = "gaussian" },
		},
		{
			name:   "missing binary",
			mutate: func(c *Config) { c.Simulator.Binary = "" },
		},
		{
			name:   "missing inventory",
			mutate: func(c *Config) { c.Simulator.InventoryDB = "" },
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, validConfig)
			cfg, err := LoadConfig(path)
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
