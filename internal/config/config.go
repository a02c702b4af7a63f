package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/openfvs/fvsbatch/internal/fvs"
	"github.com/openfvs/fvsbatch/internal/params"
)

// Config represents the application configuration
type Config struct {
	Batch      BatchSection    `toml:"batch"`
	Parameters []ParameterSpec `toml:"parameters"`
	Simulation SimSection      `toml:"simulation"`
	Simulator  SimulatorConfig `toml:"simulator"`
	Logging    LoggingConfig   `toml:"logging"`
}

// BatchSection holds the Monte Carlo batch settings
type BatchSection struct {
	Seed            int64    `toml:"seed"`
	NSamples        int      `toml:"n_samples"`
	NWorkers        int      `toml:"n_workers"`
	BatchID         string   `toml:"batch_id"`
	StandIDs        []string `toml:"stand_ids"`
	PlotIDs         []int    `toml:"plot_ids"`
	OutputBase      string   `toml:"output_base"`
	SimulateTimeout duration `toml:"simulate_timeout"`
	BatchDeadline   duration `toml:"batch_deadline"`
}

// ParameterSpec is one [[parameters]] table: a sampling distribution for one
// whitelisted parameter
type ParameterSpec struct {
	Type            string  `toml:"type"`
	Name            string  `toml:"name"`
	Min             float64 `toml:"min"`
	Max             float64 `toml:"max"`
	ProbabilityTrue float64 `toml:"probability_true"`
}

// SimSection holds the base simulation template settings
type SimSection struct {
	Name               string `toml:"name"`
	NumYears           int    `toml:"num_years"`
	CycleLength        int    `toml:"cycle_length"`
	OutputTreelist     bool   `toml:"output_treelist"`
	OutputCarbon       bool   `toml:"output_carbon"`
	ComputeCanopyCover bool   `toml:"compute_canopy_cover"`
}

// SimulatorConfig holds paths to the external simulator toolchain
type SimulatorConfig struct {
	Binary           string   `toml:"binary"`
	CompilerCommand  string   `toml:"compiler_command"`
	CompilerArgs     []string `toml:"compiler_args"`
	InventoryDB      string   `toml:"inventory_db"`
	MinTreesPerStand int      `toml:"min_trees_per_stand"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// duration lets TOML carry values like "10m" or "2h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Batch: BatchSection{
			Seed:            42,
			NSamples:        100,
			NWorkers:        4,
			SimulateTimeout: duration{10 * time.Minute},
		},
		Simulation: SimSection{
			Name:               "mc",
			NumYears:           100,
			CycleLength:        10,
			OutputCarbon:       true,
			ComputeCanopyCover: true,
		},
		Simulator: SimulatorConfig{
			MinTreesPerStand: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFromFile loads configuration from a TOML file
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadConfig loads configuration with the following precedence:
// 1. Default values
// 2. Config file (if specified)
// 3. Command-line flags (handled by caller)
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}
	return LoadFromFile(configPath)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Batch.NSamples <= 0 {
		return fmt.Errorf("batch n_samples must be positive")
	}
	if c.Batch.NWorkers <= 0 {
		return fmt.Errorf("batch n_workers must be positive")
	}
	if len(c.Parameters) == 0 {
		return fmt.Errorf("at least one [[parameters]] table is required")
	}
	for _, p := range c.Parameters {
		if _, err := p.toSpec(); err != nil {
			return err
		}
	}

	if c.Simulation.NumYears <= 0 {
		return fmt.Errorf("simulation num_years must be positive")
	}
	if c.Simulation.CycleLength <= 0 {
		return fmt.Errorf("simulation cycle_length must be positive")
	}
	if c.Simulator.Binary == "" {
		return fmt.Errorf("simulator binary must be specified")
	}
	if c.Simulator.InventoryDB == "" {
		return fmt.Errorf("simulator inventory_db must be specified")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// toSpec converts one parameter table to its typed sampling spec.
func (p ParameterSpec) toSpec() (params.ParameterSpec, error) {
	switch p.Type {
	case "uniform":
		return params.UniformSpec{ParamName: p.Name, Min: p.Min, Max: p.Max}, nil
	case "boolean":
		return params.BooleanSpec{ParamName: p.Name, ProbabilityTrue: p.ProbabilityTrue}, nil
	case "discrete_uniform":
		return params.DiscreteUniformSpec{ParamName: p.Name, Min: int(p.Min), Max: int(p.Max)}, nil
	default:
		return nil, fmt.Errorf("unknown parameter spec type %q for %s", p.Type, p.Name)
	}
}

// ToBatchConfig assembles the batch configuration the orchestrator consumes.
func (c *Config) ToBatchConfig() (*params.BatchConfig, error) {
	specs := make([]params.ParameterSpec, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		spec, err := p.toSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	base := fvs.DefaultSimConfig(c.Simulation.Name)
	base.NumYears = c.Simulation.NumYears
	base.CycleLength = c.Simulation.CycleLength
	base.OutputTreelist = c.Simulation.OutputTreelist
	base.OutputCarbon = c.Simulation.OutputCarbon
	base.ComputeCanopyCover = c.Simulation.ComputeCanopyCover
	base.Binary = c.Simulator.Binary

	return &params.BatchConfig{
		Seed:            c.Batch.Seed,
		NSamples:        c.Batch.NSamples,
		NWorkers:        c.Batch.NWorkers,
		Specs:           specs,
		BaseConfig:      base,
		BatchID:         c.Batch.BatchID,
		StandIDs:        c.Batch.StandIDs,
		PlotIDs:         c.Batch.PlotIDs,
		OutputBase:      c.Batch.OutputBase,
		SimulateTimeout: c.Batch.SimulateTimeout.Duration,
		BatchDeadline:   c.Batch.BatchDeadline.Duration,
	}, nil
}

// LogLevel maps the configured level to slog.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
