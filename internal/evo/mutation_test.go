package evo

import (
	"math/rand"
	"testing"
)

func TestGaussianMutationZeroRateCopies(t *testing.T) {
	genome := []float64{1, 2, 3}
	out := GaussianMutation{Strength: 1.0}.Mutate(rand.New(rand.NewSource(1)), genome, 0)
	for i := range genome {
		if out[i] != genome[i] {
			t.Fatalf("no-op mutation changed position %d", i)
		}
	}
	out[0] = 42
	if genome[0] == 42 {
		t.Fatal("no-op mutation aliases the input genome")
	}
}

func TestGaussianMutationZeroStrengthCopies(t *testing.T) {
	genome := []float64{1, 2, 3}
	out := GaussianMutation{Strength: 0}.Mutate(rand.New(rand.NewSource(1)), genome, 0.5)
	for i := range genome {
		if out[i] != genome[i] {
			t.Fatalf("zero strength changed position %d", i)
		}
	}
}

func TestGaussianMutationTouchesExpectedPositionCount(t *testing.T) {
	genome := make([]float64, 100)
	out := GaussianMutation{Strength: 0.5}.Mutate(rand.New(rand.NewSource(23)), genome, 0.1)

	changed := 0
	for i := range out {
		if out[i] != genome[i] {
			changed++
		}
	}
	// floor(100 * 0.1) distinct positions; Gaussian noise is almost surely
	// nonzero at each of them.
	if changed != 10 {
		t.Fatalf("changed %d positions, want 10", changed)
	}
}

func TestGaussianMutationAtLeastOnePosition(t *testing.T) {
	genome := []float64{1, 2, 3, 4, 5}
	out := GaussianMutation{Strength: 1.0}.Mutate(rand.New(rand.NewSource(31)), genome, 0.01)

	changed := 0
	for i := range out {
		if out[i] != genome[i] {
			changed++
		}
	}
	if changed != 1 {
		t.Fatalf("tiny positive rate must mutate exactly one position, changed %d", changed)
	}
}

func TestUniformRandomMutationFullRateReplacesEverything(t *testing.T) {
	genome := make([]float64, 50)
	for i := range genome {
		genome[i] = 100
	}
	out := UniformRandomMutation{Min: -1, Max: 1}.Mutate(rand.New(rand.NewSource(37)), genome, 1.0)

	for i, v := range out {
		if v < -1 || v > 1 {
			t.Fatalf("position %d outside value range: %v", i, v)
		}
		if v == 100 {
			t.Fatalf("position %d not replaced", i)
		}
	}
}

func TestUniformRandomMutationZeroRateCopies(t *testing.T) {
	genome := []float64{5, 6, 7}
	out := UniformRandomMutation{Min: -1, Max: 1}.Mutate(rand.New(rand.NewSource(41)), genome, 0)
	for i := range genome {
		if out[i] != genome[i] {
			t.Fatalf("no-op mutation changed position %d", i)
		}
	}
}

func TestUniformRandomMutationDefaultRange(t *testing.T) {
	genome := make([]float64, 30)
	for i := range genome {
		genome[i] = 9
	}
	out := UniformRandomMutation{}.Mutate(rand.New(rand.NewSource(43)), genome, 1.0)
	for i, v := range out {
		if v < -1 || v > 1 {
			t.Fatalf("default range violated at %d: %v", i, v)
		}
	}
}
