package params

import (
	"fmt"
	"math/rand"
)

// Bounds for the per-run seed handed to the simulator's own RNG.
const (
	runSeedMin = 1
	runSeedMax = 99999
)

// GenerateSamples draws the full list of parameter samples for a batch.
// One pseudorandom stream is seeded from the batch seed; for each run the
// run seed is drawn first, then one value per spec in spec-list order.
// Identical seed, spec list and NSamples reproduce the identical sample
// list, value for value.
func GenerateSamples(cfg *BatchConfig) ([]ParameterSample, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	samples := make([]ParameterSample, 0, cfg.NSamples)
	for runID := 0; runID < cfg.NSamples; runID++ {
		s := ParameterSample{
			RunID:   runID,
			RunSeed: runSeedMin + rng.Intn(runSeedMax-runSeedMin+1),
		}

		for _, spec := range cfg.Specs {
			var err error
			switch sp := spec.(type) {
			case UniformSpec:
				err = s.setFloat(sp.ParamName, sp.Min+rng.Float64()*(sp.Max-sp.Min))
			case BooleanSpec:
				err = s.setBool(sp.ParamName, rng.Float64() < sp.ProbabilityTrue)
			case DiscreteUniformSpec:
				err = s.setInt(sp.ParamName, sp.Min+rng.Intn(sp.Max-sp.Min+1))
			default:
				err = fmt.Errorf("params: unknown parameter spec type %T", spec)
			}
			if err != nil {
				return nil, err
			}
		}

		samples = append(samples, s)
	}

	return samples, nil
}
