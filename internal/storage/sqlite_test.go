//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"nexevo/internal/model"
)

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nexevo.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		CreatedAtUTC:    "2026-08-30T09:00:00Z",
		Architecture:    "mlp",
		Fitness:         "rastrigin",
		Selection:       "roulette",
		Crossover:       "uniform",
		Mutation:        "uniform_random",
		PopulationSize:  16,
		Generations:     5,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", run.ID)
	}
	if loaded.Architecture != run.Architecture || loaded.Generations != run.Generations {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}

	later := run
	later.ID = "run-2"
	later.CreatedAtUTC = "2026-08-30T10:00:00Z"
	if err := store.SaveRun(ctx, later); err != nil {
		t.Fatalf("save second run: %v", err)
	}

	listed, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "run-2" {
		t.Fatalf("unexpected listing: %+v", listed)
	}

	history := []float64{0.5, 0.7, 0.9}
	if err := store.SaveFitnessHistory(ctx, run.ID, history); err != nil {
		t.Fatalf("save history: %v", err)
	}
	loadedHistory, ok, err := store.GetFitnessHistory(ctx, run.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok || len(loadedHistory) != 3 || loadedHistory[1] != 0.7 {
		t.Fatalf("unexpected history loaded: %+v", loadedHistory)
	}

	diagnostics := []model.GenerationDiagnostics{
		{Generation: 1, BestFitness: 0.7, MeanFitness: 0.5, MinFitness: 0.1, Failed: 2},
	}
	if err := store.SaveGenerationDiagnostics(ctx, run.ID, diagnostics); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	loadedDiagnostics, ok, err := store.GetGenerationDiagnostics(ctx, run.ID)
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok || len(loadedDiagnostics) != 1 || loadedDiagnostics[0].Failed != 2 {
		t.Fatalf("unexpected diagnostics loaded: %+v", loadedDiagnostics)
	}

	genome := model.Genome{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "g1",
		Values:          []float64{0.25, -0.5},
	}
	if err := store.SaveBestGenome(ctx, run.ID, genome); err != nil {
		t.Fatalf("save best genome: %v", err)
	}
	loadedGenome, ok, err := store.GetBestGenome(ctx, run.ID)
	if err != nil {
		t.Fatalf("get best genome: %v", err)
	}
	if !ok || loadedGenome.ID != genome.ID || len(loadedGenome.Values) != 2 {
		t.Fatalf("unexpected genome loaded: %+v", loadedGenome)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nexevo.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "persisted-run",
		CreatedAtUTC:    "2026-08-30T09:00:00Z",
	}
	if err := first.SaveRun(ctx, run); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != run.ID {
		t.Fatalf("expected persisted run, got ok=%t value=%+v", ok, loaded)
	}
}
