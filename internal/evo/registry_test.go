package evo

import (
	"errors"
	"testing"
)

func TestRegistryResolvesBuiltins(t *testing.T) {
	sel, err := NewSelection("tournament", Params{TournamentSize: 5})
	if err != nil {
		t.Fatalf("tournament: %v", err)
	}
	if ts, ok := sel.(TournamentSelection); !ok || ts.TournamentSize != 5 {
		t.Fatalf("builder ignored params: %#v", sel)
	}

	if _, err := NewSelection("roulette", Params{}); err != nil {
		t.Fatalf("roulette: %v", err)
	}
	for _, name := range []string{"average", "one_point", "uniform"} {
		if _, err := NewCrossover(name, Params{}); err != nil {
			t.Fatalf("crossover %s: %v", name, err)
		}
	}
	for _, name := range []string{"gaussian", "uniform_random"} {
		if _, err := NewMutation(name, Params{Strength: 0.1, ValueMin: -1, ValueMax: 1}); err != nil {
			t.Fatalf("mutation %s: %v", name, err)
		}
	}
}

func TestRegistryUnknownStrategy(t *testing.T) {
	if _, err := NewSelection("rank", Params{}); !errors.Is(err, ErrStrategyNotFound) {
		t.Fatalf("expected ErrStrategyNotFound, got %v", err)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	err := RegisterMutation("gaussian", func(Params) MutationStrategy {
		return GaussianMutation{}
	})
	if !errors.Is(err, ErrStrategyExists) {
		t.Fatalf("expected ErrStrategyExists, got %v", err)
	}
}

func TestRegistryListsAreSorted(t *testing.T) {
	names := ListCrossovers()
	if len(names) < 3 {
		t.Fatalf("expected at least 3 crossovers, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("list not sorted: %v", names)
		}
	}
}
