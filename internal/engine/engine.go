// Package engine drives the per-generation pipeline: evaluate the population,
// select parents, breed children by crossover, and mutate them into the next
// generation.
package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"nexevo/internal/codec"
	"nexevo/internal/evaluate"
	"nexevo/internal/evo"
	"nexevo/internal/factory"
	"nexevo/internal/model"
	"nexevo/internal/stats"
)

type StopReason string

const (
	StopReasonCompleted      StopReason = "completed"
	StopReasonGoalReached    StopReason = "goal_reached"
	StopReasonNoValidParents StopReason = "no_valid_parents"
)

type Config struct {
	ModelSpec   factory.Spec
	Fitness     evaluate.FitnessFunc
	EvalContext model.EvalContext

	Selection    evo.SelectionStrategy
	Crossover    evo.CrossoverStrategy
	Mutation     evo.MutationStrategy
	MutationRate float64

	PopulationSize int
	Generations    int
	// NumParents defaults to the population size.
	NumParents int
	Workers    int
	Seed       int64
	// FitnessGoal, when set, stops the run as soon as a generation's best
	// valid fitness reaches it.
	FitnessGoal *float64

	Log logr.Logger
}

type Result struct {
	BestByGeneration []float64
	Diagnostics      []model.GenerationDiagnostics
	FinalPopulation  []evo.ScoredGenome
	Best             *evo.ScoredGenome
	GenerationsRun   int
	StopReason       StopReason
}

type Engine struct {
	cfg       Config
	rng       *rand.Rand
	evaluator *evaluate.Evaluator
}

func New(cfg Config) (*Engine, error) {
	if cfg.Fitness == nil {
		return nil, fmt.Errorf("fitness function is required")
	}
	if cfg.Selection == nil {
		return nil, fmt.Errorf("selection strategy is required")
	}
	if cfg.Crossover == nil {
		return nil, fmt.Errorf("crossover strategy is required")
	}
	if cfg.Mutation == nil {
		return nil, fmt.Errorf("mutation strategy is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.NumParents <= 0 {
		cfg.NumParents = cfg.PopulationSize
	}

	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		evaluator: &evaluate.Evaluator{
			Factory: &factory.Factory{Log: cfg.Log},
			Codec:   codec.New(cfg.Log),
			Workers: cfg.Workers,
			Log:     cfg.Log,
		},
	}, nil
}

// Run evolves the initial population for the configured number of
// generations. Each generation's population is discarded once the next one
// exists; only diagnostics and the best individual are retained.
func (e *Engine) Run(ctx context.Context, initial []model.Genome) (Result, error) {
	if len(initial) != e.cfg.PopulationSize {
		return Result{}, fmt.Errorf("initial population mismatch: got=%d want=%d", len(initial), e.cfg.PopulationSize)
	}

	population := make([]model.Genome, len(initial))
	copy(population, initial)

	result := Result{
		BestByGeneration: make([]float64, 0, e.cfg.Generations),
		Diagnostics:      make([]model.GenerationDiagnostics, 0, e.cfg.Generations),
		StopReason:       StopReasonCompleted,
	}

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		scores, err := e.evaluator.Evaluate(ctx, population, e.cfg.ModelSpec, e.cfg.Fitness, e.cfg.EvalContext)
		if err != nil {
			return Result{}, err
		}

		diag := stats.SummarizeGeneration(gen+1, scores)
		result.GenerationsRun = gen + 1
		result.FinalPopulation = scorePopulation(population, scores)
		e.trackBest(&result, population, scores)
		result.BestByGeneration = append(result.BestByGeneration, float64(diag.BestFitness))

		if e.cfg.FitnessGoal != nil && result.Best != nil && result.Best.Fitness >= *e.cfg.FitnessGoal {
			diag.ParentsSelected = 0
			result.Diagnostics = append(result.Diagnostics, diag)
			result.StopReason = StopReasonGoalReached
			e.cfg.Log.Info("fitness goal reached", "generation", gen+1, "best", result.Best.Fitness)
			return result, nil
		}
		if gen == e.cfg.Generations-1 {
			result.Diagnostics = append(result.Diagnostics, diag)
			break
		}

		parents, err := e.cfg.Selection.Select(e.rng, population, scores, e.cfg.NumParents)
		if err != nil {
			return Result{}, fmt.Errorf("selection at generation %d: %w", gen+1, err)
		}
		diag.ParentsSelected = len(parents)
		if len(parents) == 0 {
			result.Diagnostics = append(result.Diagnostics, diag)
			result.StopReason = StopReasonNoValidParents
			e.cfg.Log.Info("selection produced no parents, stopping run", "generation", gen+1)
			return result, nil
		}

		var degraded int
		population, degraded = e.breed(parents)
		diag.DegradedCrossovers = degraded
		result.Diagnostics = append(result.Diagnostics, diag)
	}
	return result, nil
}

// breed fills the next generation from the parent pool, two children per
// crossover, wrapping around the pool as needed.
func (e *Engine) breed(parents []model.Genome) ([]model.Genome, int) {
	next := make([]model.Genome, 0, e.cfg.PopulationSize)
	degraded := 0
	for i := 0; len(next) < e.cfg.PopulationSize; i += 2 {
		parentA := parents[i%len(parents)]
		parentB := parents[(i+1)%len(parents)]

		res := e.cfg.Crossover.Cross(e.rng, parentA.Values, parentB.Values)
		if res.Code != evo.DiagNone {
			degraded++
		}

		next = append(next, model.Genome{
			ID:     uuid.NewString(),
			Values: e.cfg.Mutation.Mutate(e.rng, res.ChildA, e.cfg.MutationRate),
		})
		if len(next) < e.cfg.PopulationSize {
			next = append(next, model.Genome{
				ID:     uuid.NewString(),
				Values: e.cfg.Mutation.Mutate(e.rng, res.ChildB, e.cfg.MutationRate),
			})
		}
	}
	return next, degraded
}

func (e *Engine) trackBest(result *Result, population []model.Genome, scores []float64) {
	for i, s := range scores {
		if !model.ValidFitness(s) {
			continue
		}
		if result.Best == nil || s > result.Best.Fitness {
			result.Best = &evo.ScoredGenome{Genome: population[i].Clone(), Fitness: s}
		}
	}
}

func scorePopulation(population []model.Genome, scores []float64) []evo.ScoredGenome {
	out := make([]evo.ScoredGenome, len(population))
	for i := range population {
		out[i] = evo.ScoredGenome{Genome: population[i], Fitness: scores[i]}
	}
	return out
}
