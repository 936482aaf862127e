package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"nexevo/internal/config"
	"nexevo/internal/storage"
	nexapi "nexevo/pkg/nexevo"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "nexevo.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "best-genome":
		return runBestGenome(ctx, args[1:])
	case "archs":
		return runArchs(args[1:])
	case "operators":
		return runOperators(args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(reason string) error {
	return fmt.Errorf(`%s

usage: nexevoctl <command> [flags]

commands:
  init         initialize the run store
  run          evolve a model and persist the results
  runs         list recorded runs
  fitness      print a run's best-by-generation history
  diagnostics  print a run's per-generation diagnostics
  best-genome  print a run's best genome as JSON
  archs        list registered model architectures
  operators    list selection, crossover and mutation strategies`, reason)
}

func stderrLogger(verbose bool) logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{})
}

func newClient(storeKind, dbPath, artifactsDir string, log logr.Logger) (*nexapi.Client, error) {
	return nexapi.New(nexapi.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
		Log:          log,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir, logr.Discard())
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML run configuration")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	artifactsDir := fs.String("artifacts-dir", defaultArtifactsDir, "directory for run artifacts")
	verbose := fs.Bool("verbose", false, "log evaluation diagnostics to stderr")

	runID := fs.String("run-id", "", "run identifier (generated when empty)")
	arch := fs.String("arch", "", "model architecture")
	fitness := fs.String("fitness", "", "fitness function")
	selection := fs.String("selection", "", "selection strategy")
	crossover := fs.String("crossover", "", "crossover strategy")
	mutation := fs.String("mutation", "", "mutation strategy")
	mutationRate := fs.Float64("mutation-rate", 0, "fraction of genome positions to mutate")
	population := fs.Int("pop", 0, "population size")
	generations := fs.Int("gens", 0, "number of generations")
	numParents := fs.Int("parents", 0, "parents per generation (default: population size)")
	workers := fs.Int("workers", 0, "parallel evaluations (default: CPU count)")
	seed := fs.Int64("seed", 0, "random seed")
	goal := fs.Float64("fitness-goal", 0, "stop once best fitness reaches this value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req nexapi.RunRequest
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		req = nexapi.RequestFromConfig(cfg)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["run-id"] {
		req.RunID = *runID
	}
	if set["arch"] {
		req.Architecture = *arch
	}
	if set["fitness"] {
		req.Fitness = *fitness
	}
	if set["selection"] {
		req.Selection = *selection
	}
	if set["crossover"] {
		req.Crossover = *crossover
	}
	if set["mutation"] {
		req.Mutation = *mutation
	}
	if set["mutation-rate"] {
		req.MutationRate = *mutationRate
	}
	if set["pop"] {
		req.Population = *population
	}
	if set["gens"] {
		req.Generations = *generations
	}
	if set["parents"] {
		req.NumParents = *numParents
	}
	if set["workers"] {
		req.Workers = *workers
	}
	if set["seed"] {
		req.Seed = *seed
	}
	if set["fitness-goal"] {
		g := *goal
		req.FitnessGoal = &g
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir, stderrLogger(*verbose))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished: generations=%d stop=%s best=%g\n",
		summary.RunID, summary.GenerationsRun, summary.StopReason, summary.FinalBestFitness)
	fmt.Printf("artifacts: %s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir, logr.Discard())
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	items, err := client.Runs(ctx, nexapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, item := range items {
		age := item.CreatedAtUTC
		if t, err := time.Parse(time.RFC3339Nano, item.CreatedAtUTC); err == nil {
			age = humanize.Time(t)
		}
		fmt.Printf("%s  %s  arch=%s fitness=%s pop=%d gens=%d/%d best=%g stop=%s\n",
			item.RunID, age, item.Architecture, item.Fitness,
			item.Population, item.GenerationsRun, item.Generations,
			item.FinalBestFitness, item.StopReason)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run identifier")
	latest := fs.Bool("latest", false, "use the most recent run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir, logr.Discard())
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	history, err := client.FitnessHistory(ctx, nexapi.HistoryRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	for i, best := range history {
		fmt.Printf("gen %d: %g\n", i+1, best)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run identifier")
	latest := fs.Bool("latest", false, "use the most recent run")
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir, logr.Discard())
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	diagnostics, err := client.Diagnostics(ctx, nexapi.HistoryRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := json.MarshalIndent(diagnostics, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	for _, d := range diagnostics {
		fmt.Printf("gen %d: best=%g mean=%g min=%g stddev=%g failed=%d parents=%d degraded=%d\n",
			d.Generation, float64(d.BestFitness), float64(d.MeanFitness), float64(d.MinFitness),
			float64(d.StdDevFitness), d.Failed, d.ParentsSelected, d.DegradedCrossovers)
	}
	return nil
}

func runBestGenome(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best-genome", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run identifier")
	latest := fs.Bool("latest", false, "use the most recent run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir, logr.Discard())
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	genome, err := client.BestGenome(ctx, nexapi.HistoryRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(genome, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runArchs(args []string) error {
	fs := flag.NewFlagSet("archs", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Println(strings.Join(nexapi.Architectures(), "\n"))
	return nil
}

func runOperators(args []string) error {
	fs := flag.NewFlagSet("operators", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	selections, crossovers, mutations := nexapi.Operators()
	fmt.Printf("selection: %s\n", strings.Join(selections, ", "))
	fmt.Printf("crossover: %s\n", strings.Join(crossovers, ", "))
	fmt.Printf("mutation:  %s\n", strings.Join(mutations, ", "))
	fmt.Printf("fitness:   %s\n", strings.Join(nexapi.FitnessFunctions(), ", "))
	return nil
}
