package params

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openfvs/fvsbatch/internal/fvs"
)

// BatchConfig describes one Monte Carlo batch: how many runs to sample, how
// to sample them, and how to execute them. It is constructed once before
// sampling and treated as immutable afterwards; BatchID joins every record
// the batch writes.
type BatchConfig struct {
	// Seed drives the deterministic sampler.
	Seed int64
	// NSamples is the number of runs to sample and execute.
	NSamples int
	// NWorkers is the fixed worker-pool size.
	NWorkers int
	// Specs is the ordered list of parameter distributions to sample.
	Specs []ParameterSpec
	// BaseConfig is the template simulation configuration each run's
	// sampled parameters are merged onto.
	BaseConfig fvs.SimConfig

	// BatchID uniquely identifies the batch; auto-generated when empty.
	BatchID string
	// StandIDs optionally restricts the ensemble to the named stands.
	StandIDs []string
	// PlotIDs optionally restricts the ensemble to the named plots.
	PlotIDs []int
	// OutputBase is the root directory for run outputs; defaulted from
	// BatchID when empty.
	OutputBase string

	// SimulateTimeout bounds a single simulator invocation. Zero means no
	// per-call timeout.
	SimulateTimeout time.Duration
	// BatchDeadline optionally bounds the whole batch. Zero disables it.
	BatchDeadline time.Duration
}

// ApplyDefaults fills the generated fields. Call once before Validate.
func (c *BatchConfig) ApplyDefaults() {
	if c.NWorkers == 0 {
		c.NWorkers = 4
	}
	if c.BatchID == "" {
		short := strings.SplitN(uuid.New().String(), "-", 2)[0]
		c.BatchID = fmt.Sprintf("mc_%s_%s", time.Now().Format("20060102_150405"), short)
	}
	if c.OutputBase == "" {
		c.OutputBase = filepath.Join("outputs", "mc_batch_"+c.BatchID)
	}
}

// Validate checks the configuration before any sampling or execution.
// All failures here are configuration errors surfaced synchronously.
func (c *BatchConfig) Validate() error {
	if c.NSamples <= 0 {
		return fmt.Errorf("params: n_samples must be > 0, got %d", c.NSamples)
	}
	if c.NWorkers <= 0 {
		return fmt.Errorf("params: n_workers must be > 0, got %d", c.NWorkers)
	}
	if len(c.Specs) == 0 {
		return fmt.Errorf("params: parameter spec list cannot be empty")
	}

	seen := make(map[string]bool, len(c.Specs))
	for _, spec := range c.Specs {
		if err := spec.Validate(); err != nil {
			return err
		}
		if seen[spec.Name()] {
			return fmt.Errorf("params: duplicate parameter name %q", spec.Name())
		}
		seen[spec.Name()] = true
	}

	if err := c.BaseConfig.Validate(); err != nil {
		return fmt.Errorf("params: base config: %w", err)
	}
	return nil
}
