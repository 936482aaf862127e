package storage

import (
	"context"
	"math"
	"testing"

	"nexevo/internal/model"
)

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		CreatedAtUTC:    "2026-08-30T10:00:00Z",
		Architecture:    "mlp",
		Fitness:         "sphere",
		Selection:       "tournament",
		Crossover:       "average",
		Mutation:        "gaussian",
		PopulationSize:  20,
		Generations:     10,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if loaded.Architecture != run.Architecture || loaded.PopulationSize != run.PopulationSize {
		t.Fatalf("unexpected run: %+v", loaded)
	}

	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing run, got ok=%t err=%v", ok, err)
	}
}

func TestMemoryStoreListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	runs := []model.RunRecord{
		{ID: "run-a", CreatedAtUTC: "2026-08-30T10:00:00Z"},
		{ID: "run-b", CreatedAtUTC: "2026-08-30T12:00:00Z"},
		{ID: "run-c", CreatedAtUTC: "2026-08-30T11:00:00Z"},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	listed, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(listed))
	}
	if listed[0].ID != "run-b" || listed[1].ID != "run-c" || listed[2].ID != "run-a" {
		t.Fatalf("unexpected order: %s %s %s", listed[0].ID, listed[1].ID, listed[2].ID)
	}

	limited, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs limited: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "run-b" {
		t.Fatalf("unexpected limited listing: %+v", limited)
	}
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []float64{0.1, math.Inf(-1), 0.3}
	if err := store.SaveFitnessHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}

	input[0] = 99 // caller mutation must not leak into the store

	output, ok, err := store.GetFitnessHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted fitness history")
	}
	if output[0] != 0.1 || !math.IsInf(output[1], -1) || output[2] != 0.3 {
		t.Fatalf("unexpected history: %+v", output)
	}
}

func TestMemoryStoreGenerationDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.GenerationDiagnostics{
		{Generation: 1, BestFitness: 0.8, MeanFitness: 0.6, MinFitness: 0.2, Failed: 3},
		{Generation: 2, BestFitness: 0.9, MeanFitness: 0.7, MinFitness: 0.3, Failed: 1},
	}
	if err := store.SaveGenerationDiagnostics(ctx, "run-1", input); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	output, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted diagnostics")
	}
	if len(output) != len(input) || output[1].Failed != input[1].Failed {
		t.Fatalf("unexpected diagnostics: %+v", output)
	}
}

func TestMemoryStoreBestGenomeIsDeepCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	genome := model.Genome{ID: "g1", Values: []float64{1, 2, 3}}
	if err := store.SaveBestGenome(ctx, "run-1", genome); err != nil {
		t.Fatalf("save best genome: %v", err)
	}

	genome.Values[0] = 99

	loaded, ok, err := store.GetBestGenome(ctx, "run-1")
	if err != nil {
		t.Fatalf("get best genome: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted genome")
	}
	if loaded.Values[0] != 1 {
		t.Fatalf("store aliased caller slice: %+v", loaded.Values)
	}

	loaded.Values[1] = 99
	again, _, err := store.GetBestGenome(ctx, "run-1")
	if err != nil {
		t.Fatalf("get best genome again: %v", err)
	}
	if again.Values[1] != 2 {
		t.Fatalf("store aliased returned slice: %+v", again.Values)
	}
}
