package params

import "github.com/openfvs/fvsbatch/internal/fvs"

// ApplyTo merges the sampled vector into a copy of the base simulator
// configuration. Only parameters the batch actually sampled are overridden;
// everything else keeps the base value. The run seed feeds the simulator's
// random number generator unless the batch sampled fvs_random_seed
// explicitly; a zero run seed leaves the base seed alone.
func (s ParameterSample) ApplyTo(base fvs.SimConfig) fvs.SimConfig {
	cfg := base

	if s.ThinQFactor != nil {
		v := *s.ThinQFactor
		cfg.ThinQFactor = &v
	}
	if s.ThinResidualBA != nil {
		v := *s.ThinResidualBA
		cfg.ThinResidualBA = &v
	}
	if s.ThinTriggerBA != nil {
		v := *s.ThinTriggerBA
		cfg.ThinTriggerBA = &v
	}
	if s.ThinMinDBH != nil {
		cfg.ThinMinDBH = *s.ThinMinDBH
	}
	if s.ThinMaxDBH != nil {
		cfg.ThinMaxDBH = *s.ThinMaxDBH
	}
	if s.MinHarvestVolume != nil {
		v := *s.MinHarvestVolume
		cfg.MinHarvestVolume = &v
	}
	if s.MortalityMultiplier != nil {
		v := *s.MortalityMultiplier
		cfg.MortalityMultiplier = &v
	}
	if s.EnableCalibration != nil {
		cfg.EnableCalibration = *s.EnableCalibration
	}

	if s.RandomSeed != nil {
		seed := *s.RandomSeed
		cfg.RandomSeed = &seed
	} else if s.RunSeed != 0 {
		seed := s.RunSeed
		cfg.RandomSeed = &seed
	}

	return cfg
}
