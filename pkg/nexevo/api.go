// Package nexevo is the public client for running and inspecting evolution
// runs. It wires the engine, the store and the artifacts writer together so
// callers deal with one surface.
package nexevo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	_ "nexevo/internal/bench"
	"nexevo/internal/codec"
	"nexevo/internal/config"
	"nexevo/internal/engine"
	"nexevo/internal/evaluate"
	"nexevo/internal/evo"
	"nexevo/internal/factory"
	"nexevo/internal/model"
	"nexevo/internal/stats"
	"nexevo/internal/storage"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "nexevo.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	Log          logr.Logger
}

type Client struct {
	store        storage.Store
	artifactsDir string
	log          logr.Logger
}

// RunRequest describes one evolution run. Zero values fall back to the
// defaults applied by Run.
type RunRequest struct {
	RunID        string
	Architecture string
	ModelArgs    map[string]any
	Device       string

	Fitness string
	Tags    map[string]string

	Selection        string
	Crossover        string
	Mutation         string
	MutationRate     float64
	MutationStrength float64
	TournamentK      int
	SwapProbability  float64
	ValueMin         float64
	ValueMax         float64

	Population  int
	Generations int
	NumParents  int
	Workers     int
	Seed        int64
	FitnessGoal *float64
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []float64
	FinalBestFitness float64
	GenerationsRun   int
	StopReason       string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Architecture     string
	Fitness          string
	Seed             int64
	Population       int
	Generations      int
	GenerationsRun   int
	FinalBestFitness float64
	StopReason       string
}

type HistoryRequest struct {
	RunID  string
	Latest bool
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
		log:          opts.Log,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// RequestFromConfig translates a loaded run configuration into a RunRequest.
func RequestFromConfig(cfg *config.RunConfig) RunRequest {
	return RunRequest{
		Architecture:     cfg.Model.Architecture,
		ModelArgs:        cfg.Model.Args,
		Device:           cfg.Model.Device,
		Fitness:          cfg.Eval.Fitness,
		Tags:             cfg.Eval.Tags,
		Selection:        cfg.GA.Selection,
		Crossover:        cfg.GA.Crossover,
		Mutation:         cfg.GA.Mutation,
		MutationRate:     cfg.GA.MutationRate,
		MutationStrength: cfg.GA.MutationStrength,
		TournamentK:      cfg.GA.TournamentK,
		SwapProbability:  cfg.GA.SwapProbability,
		ValueMin:         cfg.GA.ValueMin,
		ValueMax:         cfg.GA.ValueMax,
		Population:       cfg.GA.Population,
		Generations:      cfg.GA.Generations,
		NumParents:       cfg.GA.NumParents,
		Workers:          cfg.Eval.Workers,
		Seed:             cfg.Seed,
		FitnessGoal:      cfg.GA.FitnessGoal,
	}
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Architecture == "" {
		req.Architecture = "linear"
	}
	if req.Fitness == "" {
		req.Fitness = "sphere"
	}
	if req.Selection == "" {
		req.Selection = "tournament"
	}
	if req.Crossover == "" {
		req.Crossover = "average"
	}
	if req.Mutation == "" {
		req.Mutation = "gaussian"
	}
	if req.MutationRate <= 0 {
		req.MutationRate = 0.10
	}
	if req.MutationStrength <= 0 {
		req.MutationStrength = 0.06
	}
	if req.Population <= 0 {
		req.Population = 50
	}
	if req.Generations <= 0 {
		req.Generations = 20
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	fitness, err := evaluate.Resolve(req.Fitness)
	if err != nil {
		return RunSummary{}, err
	}
	params := evo.Params{
		TournamentSize:  req.TournamentK,
		SwapProbability: req.SwapProbability,
		Strength:        req.MutationStrength,
		ValueMin:        req.ValueMin,
		ValueMax:        req.ValueMax,
	}
	selection, err := evo.NewSelection(req.Selection, params)
	if err != nil {
		return RunSummary{}, err
	}
	crossover, err := evo.NewCrossover(req.Crossover, params)
	if err != nil {
		return RunSummary{}, err
	}
	mutation, err := evo.NewMutation(req.Mutation, params)
	if err != nil {
		return RunSummary{}, err
	}

	spec := factory.Spec{
		Architecture: req.Architecture,
		Args:         req.ModelArgs,
		Device:       req.Device,
	}
	initial, err := seedPopulation(spec, req.Population, req.Seed, c.log)
	if err != nil {
		return RunSummary{}, err
	}

	eng, err := engine.New(engine.Config{
		ModelSpec:      spec,
		Fitness:        fitness,
		EvalContext:    model.EvalContext{Device: req.Device, Tags: req.Tags},
		Selection:      selection,
		Crossover:      crossover,
		Mutation:       mutation,
		MutationRate:   req.MutationRate,
		PopulationSize: req.Population,
		Generations:    req.Generations,
		NumParents:     req.NumParents,
		Workers:        req.Workers,
		Seed:           req.Seed,
		FitnessGoal:    req.FitnessGoal,
		Log:            c.log,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := eng.Run(ctx, initial)
	if err != nil {
		return RunSummary{}, err
	}

	finalBest := model.FailedFitness()
	if result.Best != nil {
		finalBest = result.Best.Fitness
	}

	run := model.RunRecord{
		ID:               req.RunID,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339Nano),
		Architecture:     req.Architecture,
		Fitness:          req.Fitness,
		Selection:        req.Selection,
		Crossover:        req.Crossover,
		Mutation:         req.Mutation,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		GenerationsRun:   result.GenerationsRun,
		Seed:             req.Seed,
		FinalBestFitness: model.Fitness(finalBest),
		StopReason:       string(result.StopReason),
	}
	storage.Stamp(&run.VersionedRecord)

	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveFitnessHistory(ctx, run.ID, result.BestByGeneration); err != nil {
		return RunSummary{}, fmt.Errorf("save fitness history: %w", err)
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, run.ID, result.Diagnostics); err != nil {
		return RunSummary{}, fmt.Errorf("save diagnostics: %w", err)
	}

	var bestGenome *model.Genome
	if result.Best != nil {
		genome := result.Best.Genome.Clone()
		storage.Stamp(&genome.VersionedRecord)
		if err := c.store.SaveBestGenome(ctx, run.ID, genome); err != nil {
			return RunSummary{}, fmt.Errorf("save best genome: %w", err)
		}
		bestGenome = &genome
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Run:                   run,
		BestByGeneration:      result.BestByGeneration,
		GenerationDiagnostics: result.Diagnostics,
		BestGenome:            bestGenome,
	})
	if err != nil {
		return RunSummary{}, fmt.Errorf("write artifacts: %w", err)
	}

	return RunSummary{
		RunID:            run.ID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: append([]float64(nil), result.BestByGeneration...),
		FinalBestFitness: finalBest,
		GenerationsRun:   result.GenerationsRun,
		StopReason:       string(result.StopReason),
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	runs, err := c.store.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunItem{
			RunID:            run.ID,
			CreatedAtUTC:     run.CreatedAtUTC,
			Architecture:     run.Architecture,
			Fitness:          run.Fitness,
			Seed:             run.Seed,
			Population:       run.PopulationSize,
			Generations:      run.Generations,
			GenerationsRun:   run.GenerationsRun,
			FinalBestFitness: float64(run.FinalBestFitness),
			StopReason:       run.StopReason,
		})
	}
	return out, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req HistoryRequest) ([]float64, error) {
	runID, err := c.resolveRunID(ctx, req)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no fitness history for run %s", runID)
	}
	return history, nil
}

func (c *Client) Diagnostics(ctx context.Context, req HistoryRequest) ([]model.GenerationDiagnostics, error) {
	runID, err := c.resolveRunID(ctx, req)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no diagnostics for run %s", runID)
	}
	return diagnostics, nil
}

func (c *Client) BestGenome(ctx context.Context, req HistoryRequest) (model.Genome, error) {
	runID, err := c.resolveRunID(ctx, req)
	if err != nil {
		return model.Genome{}, err
	}
	genome, ok, err := c.store.GetBestGenome(ctx, runID)
	if err != nil {
		return model.Genome{}, err
	}
	if !ok {
		return model.Genome{}, fmt.Errorf("no best genome for run %s", runID)
	}
	return genome, nil
}

// Architectures lists the registered model architectures.
func Architectures() []string {
	return factory.List()
}

// FitnessFunctions lists the registered fitness landscapes.
func FitnessFunctions() []string {
	return evaluate.List()
}

// Operators lists the registered selection, crossover and mutation strategy
// names.
func Operators() (selections, crossovers, mutations []string) {
	return evo.ListSelections(), evo.ListCrossovers(), evo.ListMutations()
}

func (c *Client) resolveRunID(ctx context.Context, req HistoryRequest) (string, error) {
	if req.RunID != "" && req.Latest {
		return "", errors.New("use either run id or latest")
	}
	if req.RunID != "" {
		return req.RunID, nil
	}
	if !req.Latest {
		return "", errors.New("run id or latest is required")
	}
	runs, err := c.store.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[0].ID, nil
}

// seedPopulation draws the initial genomes from a normal distribution scaled
// to the genome length, the same initialization the architectures use for
// fresh weights.
func seedPopulation(spec factory.Spec, size int, seed int64, log logr.Logger) ([]model.Genome, error) {
	f := &factory.Factory{Log: log}
	probe, err := f.New(spec)
	if err != nil {
		return nil, err
	}
	length := codec.TrainableCount(probe)
	if length == 0 {
		return nil, fmt.Errorf("architecture %s has no trainable parameters", spec.Architecture)
	}

	rng := rand.New(rand.NewSource(seed))
	scale := math.Sqrt(2.0 / float64(length))
	population := make([]model.Genome, size)
	for i := range population {
		values := make([]float64, length)
		for j := range values {
			values[j] = rng.NormFloat64() * scale
		}
		population[i] = model.Genome{ID: uuid.NewString(), Values: values}
	}
	return population, nil
}
