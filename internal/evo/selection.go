package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-logr/logr"

	"nexevo/internal/model"
)

// ErrLengthMismatch reports population/fitness sequences of different or
// unusable lengths. Selection fails hard on it; there is no fallback.
var ErrLengthMismatch = errors.New("population and fitness lengths do not match")

const rouletteEpsilon = 1e-9

// TournamentSelection picks each parent by a random sub-sample contest among
// the valid individuals. With no valid individuals it returns an empty
// sequence; it never falls back to failed individuals.
type TournamentSelection struct {
	TournamentSize int
	Log            logr.Logger
}

func (TournamentSelection) Name() string {
	return "tournament"
}

func (s TournamentSelection) Select(rng *rand.Rand, population []model.Genome, fitness []float64, numParents int) ([]model.Genome, error) {
	if len(population) != len(fitness) {
		return nil, fmt.Errorf("%w: population=%d fitness=%d", ErrLengthMismatch, len(population), len(fitness))
	}
	if numParents <= 0 || len(population) == 0 {
		return []model.Genome{}, nil
	}

	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}

	valid := validIndices(fitness)
	if len(valid) == 0 {
		s.Log.Info("tournament selection found no valid individuals", "population", len(population))
		return []model.Genome{}, nil
	}

	parents := make([]model.Genome, 0, numParents)
	for n := 0; n < numParents; n++ {
		// With fewer valid individuals than the tournament size the
		// contest legitimately samples with replacement.
		var contest []int
		if len(valid) >= tournamentSize {
			contest = sampleWithoutReplacement(rng, valid, tournamentSize)
		} else {
			contest = sampleWithReplacement(rng, valid, len(valid))
		}

		winner := contest[0]
		for _, idx := range contest[1:] {
			// Strict comparison keeps the first-encountered winner on ties.
			if fitness[idx] > fitness[winner] {
				winner = idx
			}
		}
		parents = append(parents, population[winner].Clone())
	}
	return parents, nil
}

// RouletteWheelSelection picks parents with probability proportional to
// shifted fitness. Its degenerate-input fallbacks differ from tournament
// selection on purpose: with no valid individuals it samples uniformly over
// the whole population, and with only non-positive valid scores it samples
// uniformly among the valid ones.
type RouletteWheelSelection struct {
	Log logr.Logger
}

func (RouletteWheelSelection) Name() string {
	return "roulette"
}

func (s RouletteWheelSelection) Select(rng *rand.Rand, population []model.Genome, fitness []float64, numParents int) ([]model.Genome, error) {
	if len(population) == 0 || len(population) != len(fitness) {
		return nil, fmt.Errorf("%w: population=%d fitness=%d", ErrLengthMismatch, len(population), len(fitness))
	}
	if numParents <= 0 {
		return []model.Genome{}, nil
	}
	if numParents > len(population) {
		numParents = len(population)
	}

	valid := validIndices(fitness)
	if len(valid) == 0 {
		s.Log.Info("all individuals failed evaluation, selecting uniformly over whole population")
		return pickUniform(rng, population, indexRange(len(population)), numParents), nil
	}

	allNonPositive := true
	minValid := fitness[valid[0]]
	for _, idx := range valid {
		if fitness[idx] > 0 {
			allNonPositive = false
		}
		if fitness[idx] < minValid {
			minValid = fitness[idx]
		}
	}
	if allNonPositive {
		s.Log.Info("all valid fitness scores are non-positive, selecting uniformly among valid")
		return pickUniform(rng, population, valid, numParents), nil
	}

	// Shift so the minimum becomes a small positive epsilon, preserving
	// relative order. Already-positive distributions are used as-is.
	weights := make([]float64, len(valid))
	total := 0.0
	for i, idx := range valid {
		w := fitness[idx]
		if minValid <= 0 {
			w = w - minValid + rouletteEpsilon
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		s.Log.Info("zero total fitness mass after shifting, selecting uniformly among valid")
		return pickUniform(rng, population, valid, numParents), nil
	}

	cumulative := make([]float64, len(weights))
	acc := 0.0
	for i, w := range weights {
		acc += w
		cumulative[i] = acc
	}

	parents := make([]model.Genome, 0, numParents)
	for n := 0; n < numParents; n++ {
		target := rng.Float64() * total
		i := searchCumulative(cumulative, target)
		parents = append(parents, population[valid[i]].Clone())
	}
	return parents, nil
}

func validIndices(fitness []float64) []int {
	valid := make([]int, 0, len(fitness))
	for i, f := range fitness {
		if model.ValidFitness(f) {
			valid = append(valid, i)
		}
	}
	return valid
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func pickUniform(rng *rand.Rand, population []model.Genome, candidates []int, count int) []model.Genome {
	out := make([]model.Genome, 0, count)
	for n := 0; n < count; n++ {
		out = append(out, population[candidates[rng.Intn(len(candidates))]].Clone())
	}
	return out
}

// sampleWithoutReplacement draws count distinct entries of candidates via a
// partial Fisher-Yates shuffle, preserving draw order.
func sampleWithoutReplacement(rng *rand.Rand, candidates []int, count int) []int {
	scratch := make([]int, len(candidates))
	copy(scratch, candidates)
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(scratch)-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	return scratch[:count]
}

func sampleWithReplacement(rng *rand.Rand, candidates []int, count int) []int {
	out := make([]int, count)
	for i := range out {
		out[i] = candidates[rng.Intn(len(candidates))]
	}
	return out
}

func searchCumulative(cumulative []float64, target float64) int {
	lo, hi := 0, len(cumulative)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if cumulative[mid] <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
