package bench

import (
	"context"
	"math"

	"nexevo/internal/model"
)

// The built-in landscapes are classical minimization benchmarks negated so
// that the engine's higher-is-better convention applies. Both have their
// optimum at the zero vector with fitness 0.

func sphereFitness(_ context.Context, m model.ParamModel, _ model.EvalContext) (float64, error) {
	sum := 0.0
	for _, t := range m.Parameters() {
		if t.Frozen {
			continue
		}
		for _, v := range t.Data {
			sum += v * v
		}
	}
	return -sum, nil
}

func rastriginFitness(_ context.Context, m model.ParamModel, _ model.EvalContext) (float64, error) {
	sum := 0.0
	for _, t := range m.Parameters() {
		if t.Frozen {
			continue
		}
		for _, v := range t.Data {
			sum += v*v - 10*math.Cos(2*math.Pi*v) + 10
		}
	}
	return -sum, nil
}
