package params

import "fmt"

// ParameterSample is one fully sampled parameter vector. RunID is the
// sequential position within the batch; RunSeed seeds the simulator's own
// random number generator for the run. One nullable field exists per
// whitelisted parameter; nil means the parameter was not part of the batch's
// spec list. The field set mirrors the run registry schema.
type ParameterSample struct {
	RunID   int
	RunSeed int

	ThinQFactor         *float64
	ThinResidualBA      *float64
	ThinTriggerBA       *float64
	ThinMinDBH          *float64
	ThinMaxDBH          *float64
	MinHarvestVolume    *float64
	MortalityMultiplier *float64
	EnableCalibration   *bool
	RandomSeed          *int
}

// setFloat assigns a continuous sampled value to the named parameter field.
func (s *ParameterSample) setFloat(name string, v float64) error {
	switch name {
	case ParamThinQFactor:
		s.ThinQFactor = &v
	case ParamThinResidualBA:
		s.ThinResidualBA = &v
	case ParamThinTriggerBA:
		s.ThinTriggerBA = &v
	case ParamThinMinDBH:
		s.ThinMinDBH = &v
	case ParamThinMaxDBH:
		s.ThinMaxDBH = &v
	case ParamMinHarvestVolume:
		s.MinHarvestVolume = &v
	case ParamMortalityMultiplier:
		s.MortalityMultiplier = &v
	default:
		return fmt.Errorf("params: parameter %s does not take a continuous value", name)
	}
	return nil
}

// setBool assigns a boolean sampled value to the named parameter field.
func (s *ParameterSample) setBool(name string, v bool) error {
	if name != ParamEnableCalibration {
		return fmt.Errorf("params: parameter %s does not take a boolean value", name)
	}
	s.EnableCalibration = &v
	return nil
}

// setInt assigns a discrete sampled value to the named parameter field.
// Integer draws are widened to float for the continuous parameters so a
// discrete spec on, say, thin_trigger_ba still lands in the right field.
func (s *ParameterSample) setInt(name string, v int) error {
	if name == ParamRandomSeed {
		s.RandomSeed = &v
		return nil
	}
	return s.setFloat(name, float64(v))
}
