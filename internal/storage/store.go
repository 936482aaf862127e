// Package storage persists run records and their histories behind a pluggable
// Store interface with in-memory and sqlite backends.
package storage

import (
	"context"

	"nexevo/internal/model"
)

// Store defines persistence operations for completed and in-flight runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveGenerationDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetGenerationDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveBestGenome(ctx context.Context, runID string, genome model.Genome) error
	GetBestGenome(ctx context.Context, runID string) (model.Genome, bool, error)
}
