// Package evo implements the selection, crossover and mutation operator
// families that turn an evaluated population into the next generation.
package evo

import (
	"math/rand"

	"nexevo/internal/model"
)

// ScoredGenome pairs a genome with its evaluated fitness.
type ScoredGenome struct {
	Genome  model.Genome
	Fitness float64
}

// DiagnosticCode marks degraded fail-soft operator output. Callers detect
// degraded operation by checking for a non-empty code, not by exceptions.
type DiagnosticCode string

const (
	DiagNone             DiagnosticCode = ""
	DiagShapeMismatch    DiagnosticCode = "shape_mismatch"
	DiagDegenerateLength DiagnosticCode = "degenerate_length"
)

// SelectionStrategy chooses parent genomes from an evaluated population.
// The returned sequence is ordered; implementations clone genomes so callers
// may mutate the result freely.
type SelectionStrategy interface {
	Name() string
	Select(rng *rand.Rand, population []model.Genome, fitness []float64, numParents int) ([]model.Genome, error)
}

// CrossoverStrategy combines two equal-length parent genomes into two child
// genomes of the same length. It never fails: degraded inputs yield parent
// copies with a diagnostic code.
type CrossoverStrategy interface {
	Name() string
	Cross(rng *rand.Rand, parentA, parentB []float64) CrossoverResult
}

// CrossoverResult carries both children plus an optional diagnostic code for
// fail-soft degradation.
type CrossoverResult struct {
	ChildA []float64
	ChildB []float64
	Code   DiagnosticCode
}

// MutationStrategy perturbs a single genome. The input is never modified; the
// result is a fresh vector even when rate disables mutation.
type MutationStrategy interface {
	Name() string
	Mutate(rng *rand.Rand, genome []float64, rate float64) []float64
}

func cloneValues(src []float64) []float64 {
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}
