package evo

import (
	"math/rand"

	"github.com/go-logr/logr"
)

// AverageCrossover returns two identical children, each the element-wise mean
// of the two parents.
type AverageCrossover struct {
	Log logr.Logger
}

func (AverageCrossover) Name() string {
	return "average"
}

func (s AverageCrossover) Cross(_ *rand.Rand, parentA, parentB []float64) CrossoverResult {
	if len(parentA) != len(parentB) {
		return s.degrade(parentA, parentB)
	}
	mean := make([]float64, len(parentA))
	for i := range mean {
		mean[i] = (parentA[i] + parentB[i]) / 2
	}
	return CrossoverResult{ChildA: mean, ChildB: cloneValues(mean)}
}

func (s AverageCrossover) degrade(parentA, parentB []float64) CrossoverResult {
	s.Log.Info("parent shapes do not match, returning parent copies",
		"crossover", s.Name(), "lenA", len(parentA), "lenB", len(parentB))
	return CrossoverResult{ChildA: cloneValues(parentA), ChildB: cloneValues(parentB), Code: DiagShapeMismatch}
}

// OnePointCrossover splits both parents at one random index in [1, len-1] and
// swaps the suffixes. Genomes shorter than two elements pass through as
// copies.
type OnePointCrossover struct {
	Log logr.Logger
}

func (OnePointCrossover) Name() string {
	return "one_point"
}

func (s OnePointCrossover) Cross(rng *rand.Rand, parentA, parentB []float64) CrossoverResult {
	if len(parentA) != len(parentB) {
		s.Log.Info("parent shapes do not match, returning parent copies",
			"crossover", s.Name(), "lenA", len(parentA), "lenB", len(parentB))
		return CrossoverResult{ChildA: cloneValues(parentA), ChildB: cloneValues(parentB), Code: DiagShapeMismatch}
	}
	size := len(parentA)
	if size < 2 {
		return CrossoverResult{ChildA: cloneValues(parentA), ChildB: cloneValues(parentB), Code: DiagDegenerateLength}
	}

	split := 1 + rng.Intn(size-1)
	childA := make([]float64, size)
	childB := make([]float64, size)
	copy(childA[:split], parentA[:split])
	copy(childA[split:], parentB[split:])
	copy(childB[:split], parentB[:split])
	copy(childB[split:], parentA[split:])
	return CrossoverResult{ChildA: childA, ChildB: childB}
}

// UniformCrossover swaps each position between the children independently
// with probability SwapProbability. The children are complementary: wherever
// child A takes parent B's value, child B takes parent A's.
type UniformCrossover struct {
	// SwapProbability <= 0 selects the conventional 0.5.
	SwapProbability float64
	Log             logr.Logger
}

func (UniformCrossover) Name() string {
	return "uniform"
}

func (s UniformCrossover) Cross(rng *rand.Rand, parentA, parentB []float64) CrossoverResult {
	if len(parentA) != len(parentB) {
		s.Log.Info("parent shapes do not match, returning parent copies",
			"crossover", s.Name(), "lenA", len(parentA), "lenB", len(parentB))
		return CrossoverResult{ChildA: cloneValues(parentA), ChildB: cloneValues(parentB), Code: DiagShapeMismatch}
	}

	p := s.SwapProbability
	if p <= 0 {
		p = 0.5
	}
	childA := cloneValues(parentA)
	childB := cloneValues(parentB)
	for i := range childA {
		if rng.Float64() < p {
			childA[i], childB[i] = parentB[i], parentA[i]
		}
	}
	return CrossoverResult{ChildA: childA, ChildB: childB}
}
