// Package stats computes run summaries and writes run artifacts to disk.
package stats

import (
	"gonum.org/v1/gonum/stat"

	"nexevo/internal/model"
)

// SummarizeGeneration reduces one generation's fitness scores to
// diagnostics. Statistics cover valid scores only; failure sentinels are
// counted, not averaged.
func SummarizeGeneration(generation int, scores []float64) model.GenerationDiagnostics {
	diag := model.GenerationDiagnostics{
		Generation:  generation,
		BestFitness: model.Fitness(model.FailedFitness()),
		MinFitness:  model.Fitness(model.FailedFitness()),
	}

	valid := make([]float64, 0, len(scores))
	for _, s := range scores {
		if !model.ValidFitness(s) {
			diag.Failed++
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return diag
	}

	best, min := valid[0], valid[0]
	for _, s := range valid[1:] {
		if s > best {
			best = s
		}
		if s < min {
			min = s
		}
	}
	diag.BestFitness = model.Fitness(best)
	diag.MinFitness = model.Fitness(min)
	diag.MeanFitness = model.Fitness(stat.Mean(valid, nil))
	if len(valid) > 1 {
		diag.StdDevFitness = model.Fitness(stat.StdDev(valid, nil))
	}
	return diag
}
