// Package params defines the sampled parameter space for a Monte Carlo
// batch: the recognized parameter names, the distribution specs, the batch
// configuration, and the deterministic sampler.
package params

import (
	"fmt"
	"sort"
)

// Recognized simulation-parameter names. Only these may appear in a spec
// list; they map one-to-one onto simulator configuration fields.
const (
	ParamThinQFactor         = "thin_q_factor"
	ParamThinResidualBA      = "thin_residual_ba"
	ParamThinTriggerBA       = "thin_trigger_ba"
	ParamThinMinDBH          = "thin_min_dbh"
	ParamThinMaxDBH          = "thin_max_dbh"
	ParamMinHarvestVolume    = "min_harvest_volume"
	ParamMortalityMultiplier = "mortality_multiplier"
	ParamEnableCalibration   = "enable_calibration"
	ParamRandomSeed          = "fvs_random_seed"
)

// ValidParameterNames is the whitelist of names a ParameterSpec may carry.
var ValidParameterNames = map[string]bool{
	ParamThinQFactor:         true,
	ParamThinResidualBA:      true,
	ParamThinTriggerBA:       true,
	ParamThinMinDBH:          true,
	ParamThinMaxDBH:          true,
	ParamMinHarvestVolume:    true,
	ParamMortalityMultiplier: true,
	ParamEnableCalibration:   true,
	ParamRandomSeed:          true,
}

func validNamesSorted() []string {
	names := make([]string, 0, len(ValidParameterNames))
	for n := range ValidParameterNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParameterSpec describes one sampled parameter's distribution. The concrete
// types are UniformSpec, BooleanSpec and DiscreteUniformSpec.
type ParameterSpec interface {
	// Name returns the whitelisted parameter name this spec samples.
	Name() string
	// Validate checks the spec's name and distribution bounds.
	Validate() error
}

// UniformSpec samples a continuous value uniformly from [Min, Max].
type UniformSpec struct {
	ParamName string
	Min, Max  float64
}

func (s UniformSpec) Name() string { return s.ParamName }

func (s UniformSpec) Validate() error {
	if err := checkName(s.ParamName); err != nil {
		return err
	}
	if s.Min >= s.Max {
		return fmt.Errorf("params: spec %s: min (%g) must be < max (%g)", s.ParamName, s.Min, s.Max)
	}
	return nil
}

// BooleanSpec samples true with probability ProbabilityTrue.
type BooleanSpec struct {
	ParamName       string
	ProbabilityTrue float64
}

func (s BooleanSpec) Name() string { return s.ParamName }

func (s BooleanSpec) Validate() error {
	if err := checkName(s.ParamName); err != nil {
		return err
	}
	if s.ProbabilityTrue < 0.0 || s.ProbabilityTrue > 1.0 {
		return fmt.Errorf("params: spec %s: probability_true must be in [0, 1], got %g",
			s.ParamName, s.ProbabilityTrue)
	}
	return nil
}

// DiscreteUniformSpec samples an integer uniformly from [Min, Max] inclusive.
type DiscreteUniformSpec struct {
	ParamName string
	Min, Max  int
}

func (s DiscreteUniformSpec) Name() string { return s.ParamName }

func (s DiscreteUniformSpec) Validate() error {
	if err := checkName(s.ParamName); err != nil {
		return err
	}
	if s.Min > s.Max {
		return fmt.Errorf("params: spec %s: min (%d) must be <= max (%d)", s.ParamName, s.Min, s.Max)
	}
	return nil
}

func checkName(name string) error {
	if !ValidParameterNames[name] {
		return fmt.Errorf("params: invalid parameter name %q (valid names: %v)",
			name, validNamesSorted())
	}
	return nil
}
