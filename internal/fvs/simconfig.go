package fvs

import "fmt"

// SimConfig is the template configuration for one simulator run. Optional
// management and stochastic parameters use pointers; nil means the matching
// keyword is omitted from the generated input. Fields are grouped by concern:
// projection, output toggles, management, stochastic.
type SimConfig struct {
	Name        string
	NumYears    int
	CycleLength int

	// Output toggles
	OutputTreelist     bool
	OutputCarbon       bool
	ComputeCanopyCover bool

	// Management parameters
	MinHarvestVolume *float64
	ThinQFactor      *float64
	ThinResidualBA   *float64
	ThinTriggerBA    *float64
	ThinMinDBH       float64
	ThinMaxDBH       float64
	ThinYear         *int

	// Stochastic parameters
	MortalityMultiplier *float64
	EnableCalibration   bool
	RandomSeed          *int

	// Path to the simulator executable.
	Binary string
}

// DefaultSimConfig returns a SimConfig with the standard projection settings.
func DefaultSimConfig(name string) SimConfig {
	return SimConfig{
		Name:               name,
		NumYears:           100,
		CycleLength:        10,
		OutputCarbon:       true,
		ComputeCanopyCover: true,
		ThinMinDBH:         0.0,
		ThinMaxDBH:         999.0,
		EnableCalibration:  true,
	}
}

// NumCycles returns the number of simulator cycles needed to cover NumYears.
func (c SimConfig) NumCycles() int {
	return (c.NumYears + c.CycleLength - 1) / c.CycleLength
}

// Validate checks the configuration for values the simulator would reject.
func (c SimConfig) Validate() error {
	if c.NumYears <= 0 {
		return fmt.Errorf("sim config: num_years must be positive, got %d", c.NumYears)
	}
	if c.CycleLength <= 0 {
		return fmt.Errorf("sim config: cycle_length must be positive, got %d", c.CycleLength)
	}
	if c.MortalityMultiplier != nil {
		if m := *c.MortalityMultiplier; m <= 0.0 || m > 5.0 {
			return fmt.Errorf("sim config: mortality_multiplier must be in (0.0, 5.0], got %g", m)
		}
	}
	if c.RandomSeed != nil {
		if s := *c.RandomSeed; s < 1 || s > 99999 {
			return fmt.Errorf("sim config: random_seed must be in [1, 99999], got %d", s)
		}
	}
	return nil
}
