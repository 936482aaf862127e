package evo

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrStrategyExists   = errors.New("strategy already registered")
	ErrStrategyNotFound = errors.New("strategy not found")
)

// Params carries the tunable knobs a strategy builder may consume. Zero
// values mean "use the strategy default".
type Params struct {
	TournamentSize  int
	SwapProbability float64
	Strength        float64
	ValueMin        float64
	ValueMax        float64
}

type (
	SelectionBuilder func(p Params) SelectionStrategy
	CrossoverBuilder func(p Params) CrossoverStrategy
	MutationBuilder  func(p Params) MutationStrategy
)

var strategyRegistry = struct {
	mu         sync.RWMutex
	selections map[string]SelectionBuilder
	crossovers map[string]CrossoverBuilder
	mutations  map[string]MutationBuilder
}{
	selections: make(map[string]SelectionBuilder),
	crossovers: make(map[string]CrossoverBuilder),
	mutations:  make(map[string]MutationBuilder),
}

func RegisterSelection(name string, builder SelectionBuilder) error {
	if name == "" || builder == nil {
		return errors.New("selection name and builder are required")
	}
	strategyRegistry.mu.Lock()
	defer strategyRegistry.mu.Unlock()
	if _, exists := strategyRegistry.selections[name]; exists {
		return fmt.Errorf("%w: selection %s", ErrStrategyExists, name)
	}
	strategyRegistry.selections[name] = builder
	return nil
}

func RegisterCrossover(name string, builder CrossoverBuilder) error {
	if name == "" || builder == nil {
		return errors.New("crossover name and builder are required")
	}
	strategyRegistry.mu.Lock()
	defer strategyRegistry.mu.Unlock()
	if _, exists := strategyRegistry.crossovers[name]; exists {
		return fmt.Errorf("%w: crossover %s", ErrStrategyExists, name)
	}
	strategyRegistry.crossovers[name] = builder
	return nil
}

func RegisterMutation(name string, builder MutationBuilder) error {
	if name == "" || builder == nil {
		return errors.New("mutation name and builder are required")
	}
	strategyRegistry.mu.Lock()
	defer strategyRegistry.mu.Unlock()
	if _, exists := strategyRegistry.mutations[name]; exists {
		return fmt.Errorf("%w: mutation %s", ErrStrategyExists, name)
	}
	strategyRegistry.mutations[name] = builder
	return nil
}

func NewSelection(name string, p Params) (SelectionStrategy, error) {
	strategyRegistry.mu.RLock()
	builder, ok := strategyRegistry.selections[name]
	strategyRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: selection %s", ErrStrategyNotFound, name)
	}
	return builder(p), nil
}

func NewCrossover(name string, p Params) (CrossoverStrategy, error) {
	strategyRegistry.mu.RLock()
	builder, ok := strategyRegistry.crossovers[name]
	strategyRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: crossover %s", ErrStrategyNotFound, name)
	}
	return builder(p), nil
}

func NewMutation(name string, p Params) (MutationStrategy, error) {
	strategyRegistry.mu.RLock()
	builder, ok := strategyRegistry.mutations[name]
	strategyRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: mutation %s", ErrStrategyNotFound, name)
	}
	return builder(p), nil
}

func ListSelections() []string { return listNames(strategyRegistry.selections) }
func ListCrossovers() []string { return listNames(strategyRegistry.crossovers) }
func ListMutations() []string  { return listNames(strategyRegistry.mutations) }

func listNames[T any](m map[string]T) []string {
	strategyRegistry.mu.RLock()
	defer strategyRegistry.mu.RUnlock()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(RegisterSelection("tournament", func(p Params) SelectionStrategy {
		return TournamentSelection{TournamentSize: p.TournamentSize}
	}))
	must(RegisterSelection("roulette", func(Params) SelectionStrategy {
		return RouletteWheelSelection{}
	}))
	must(RegisterCrossover("average", func(Params) CrossoverStrategy {
		return AverageCrossover{}
	}))
	must(RegisterCrossover("one_point", func(Params) CrossoverStrategy {
		return OnePointCrossover{}
	}))
	must(RegisterCrossover("uniform", func(p Params) CrossoverStrategy {
		return UniformCrossover{SwapProbability: p.SwapProbability}
	}))
	must(RegisterMutation("gaussian", func(p Params) MutationStrategy {
		return GaussianMutation{Strength: p.Strength}
	}))
	must(RegisterMutation("uniform_random", func(p Params) MutationStrategy {
		return UniformRandomMutation{Min: p.ValueMin, Max: p.ValueMax}
	}))
}
