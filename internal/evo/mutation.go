package evo

import "math/rand"

// GaussianMutation perturbs max(1, floor(len*rate)) distinct positions with
// zero-mean Gaussian noise of standard deviation Strength. A non-positive
// rate or strength yields an untouched copy.
type GaussianMutation struct {
	Strength float64
}

func (GaussianMutation) Name() string {
	return "gaussian"
}

func (s GaussianMutation) Mutate(rng *rand.Rand, genome []float64, rate float64) []float64 {
	out := cloneValues(genome)
	if rate <= 0 || s.Strength <= 0 || len(out) == 0 {
		return out
	}

	count := int(float64(len(out)) * rate)
	if count < 1 {
		count = 1
	}
	if count > len(out) {
		count = len(out)
	}

	for _, idx := range sampleWithoutReplacement(rng, indexRange(len(out)), count) {
		out[idx] += rng.NormFloat64() * s.Strength
	}
	return out
}

// UniformRandomMutation replaces (not perturbs) each position independently
// with probability rate, drawing the new value uniformly from [Min, Max].
type UniformRandomMutation struct {
	// A zero-value range selects the conventional [-1, 1].
	Min float64
	Max float64
}

func (UniformRandomMutation) Name() string {
	return "uniform_random"
}

func (s UniformRandomMutation) Mutate(rng *rand.Rand, genome []float64, rate float64) []float64 {
	out := cloneValues(genome)
	if rate <= 0 {
		return out
	}

	lo, hi := s.Min, s.Max
	if lo == 0 && hi == 0 {
		lo, hi = -1, 1
	}
	for i := range out {
		if rng.Float64() < rate {
			out[i] = lo + rng.Float64()*(hi-lo)
		}
	}
	return out
}
