// Package evaluate runs a fitness function over every genome in a
// population. Individual evaluations are parallel and isolated: one
// individual's failure never aborts the generation.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"github.com/sourcegraph/conc/pool"

	"nexevo/internal/codec"
	"nexevo/internal/factory"
	"nexevo/internal/model"
)

// FitnessFunc scores one freshly restored model instance. It must tolerate
// repeated calls within a generation and must not retain state across calls.
// A non-nil error, a NaN score, or a panic all count as a failed evaluation.
type FitnessFunc func(ctx context.Context, m model.ParamModel, ec model.EvalContext) (float64, error)

var (
	ErrFitnessExists   = errors.New("fitness function already registered")
	ErrFitnessNotFound = errors.New("fitness function not found")
)

var fitnessRegistry = struct {
	mu sync.RWMutex
	m  map[string]FitnessFunc
}{
	m: make(map[string]FitnessFunc),
}

func Register(name string, fn FitnessFunc) error {
	if name == "" || fn == nil {
		return errors.New("fitness name and function are required")
	}
	fitnessRegistry.mu.Lock()
	defer fitnessRegistry.mu.Unlock()
	if _, exists := fitnessRegistry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrFitnessExists, name)
	}
	fitnessRegistry.m[name] = fn
	return nil
}

func Resolve(name string) (FitnessFunc, error) {
	fitnessRegistry.mu.RLock()
	fn, ok := fitnessRegistry.m[name]
	fitnessRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFitnessNotFound, name)
	}
	return fn, nil
}

func List() []string {
	fitnessRegistry.mu.RLock()
	defer fitnessRegistry.mu.RUnlock()
	names := make([]string, 0, len(fitnessRegistry.m))
	for name := range fitnessRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Evaluator struct {
	Factory *factory.Factory
	Codec   *codec.Codec
	Workers int
	Log     logr.Logger
}

// Evaluate scores every genome, preserving population order. The
// architecture is resolved once per call; only instantiation is repeated per
// individual. Failed individuals record the failure sentinel. Context
// cancellation aborts the call as a whole.
func (e *Evaluator) Evaluate(ctx context.Context, population []model.Genome, spec factory.Spec, fn FitnessFunc, ec model.EvalContext) ([]float64, error) {
	if fn == nil {
		return nil, errors.New("fitness function is required")
	}
	builder, err := e.Factory.Resolve(spec.Architecture)
	if err != nil {
		return nil, err
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(population) {
		workers = len(population)
	}
	if workers < 1 {
		workers = 1
	}

	scores := make([]float64, len(population))
	p := pool.New().WithMaxGoroutines(workers)
	for i := range population {
		p.Go(func() {
			if ctx.Err() != nil {
				scores[i] = model.FailedFitness()
				return
			}
			scores[i] = e.evaluateOne(ctx, i, population[i], builder, spec, fn, ec)
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

// evaluateOne constructs a fresh instance, restores the genome and scores it.
// The instance is released before the worker picks up the next individual,
// bounding peak memory for large populations.
func (e *Evaluator) evaluateOne(ctx context.Context, idx int, genome model.Genome, builder factory.Builder, spec factory.Spec, fn FitnessFunc, ec model.EvalContext) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			e.Log.Info("fitness function panicked", "individual", idx, "panic", fmt.Sprint(r))
			score = model.FailedFitness()
		}
	}()

	m, err := e.Factory.Instantiate(builder, spec)
	if err != nil {
		e.Log.Info("model construction failed", "individual", idx, "reason", err.Error())
		return model.FailedFitness()
	}
	defer release(m)

	if err := e.Codec.Restore(m, genome.Values); err != nil {
		e.Log.Info("genome restore failed", "individual", idx, "reason", err.Error())
		return model.FailedFitness()
	}

	fitness, err := fn(ctx, m, ec)
	if err != nil {
		e.Log.Info("fitness function failed", "individual", idx, "reason", err.Error())
		return model.FailedFitness()
	}
	if math.IsNaN(fitness) {
		e.Log.Info("fitness function returned non-numeric score", "individual", idx)
		return model.FailedFitness()
	}
	return fitness
}

// release frees any transient resources a model holds, for instance
// accelerator memory.
func release(m model.ParamModel) {
	if closer, ok := m.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
