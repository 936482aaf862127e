// Package config loads run configuration from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the root configuration structure for one evolution run.
type RunConfig struct {
	Seed  int64       `yaml:"seed"`
	Model ModelConfig `yaml:"model"`
	GA    GAConfig    `yaml:"ga"`
	Eval  EvalConfig  `yaml:"eval"`
}

// ModelConfig names the architecture under evolution and its construction
// arguments.
type ModelConfig struct {
	Architecture string         `yaml:"architecture"`
	Args         map[string]any `yaml:"args"`
	Device       string         `yaml:"device"`
}

// GAConfig defines the evolution operators and loop parameters.
type GAConfig struct {
	Population       int      `yaml:"population"`
	Generations      int      `yaml:"generations"`
	NumParents       int      `yaml:"num_parents"`
	Selection        string   `yaml:"selection"`
	Crossover        string   `yaml:"crossover"`
	Mutation         string   `yaml:"mutation"`
	MutationRate     float64  `yaml:"mutation_rate"`
	MutationStrength float64  `yaml:"mutation_strength"`
	TournamentK      int      `yaml:"tournament_k"`
	SwapProbability  float64  `yaml:"swap_probability"`
	ValueMin         float64  `yaml:"value_min"`
	ValueMax         float64  `yaml:"value_max"`
	FitnessGoal      *float64 `yaml:"fitness_goal"`
}

// EvalConfig defines fitness evaluation parameters.
type EvalConfig struct {
	Fitness string            `yaml:"fitness"`
	Workers int               `yaml:"workers"`
	Tags    map[string]string `yaml:"tags"`
}

// Load reads a YAML config file, applies defaults and validates.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &RunConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a ready-to-run configuration for the built-in benchmark
// landscape.
func Default() *RunConfig {
	cfg := &RunConfig{}
	ApplyDefaults(cfg)
	return cfg
}

func ApplyDefaults(cfg *RunConfig) {
	if cfg.Seed == 0 {
		cfg.Seed = 1337
	}
	if cfg.Model.Architecture == "" {
		cfg.Model.Architecture = "linear"
	}
	if cfg.GA.Population == 0 {
		cfg.GA.Population = 50
	}
	if cfg.GA.Generations == 0 {
		cfg.GA.Generations = 20
	}
	if cfg.GA.Selection == "" {
		cfg.GA.Selection = "tournament"
	}
	if cfg.GA.Crossover == "" {
		cfg.GA.Crossover = "average"
	}
	if cfg.GA.Mutation == "" {
		cfg.GA.Mutation = "gaussian"
	}
	if cfg.GA.MutationRate == 0 {
		cfg.GA.MutationRate = 0.10
	}
	if cfg.GA.MutationStrength == 0 {
		cfg.GA.MutationStrength = 0.06
	}
	if cfg.GA.TournamentK == 0 {
		cfg.GA.TournamentK = 3
	}
	if cfg.GA.SwapProbability == 0 {
		cfg.GA.SwapProbability = 0.5
	}
	if cfg.Eval.Fitness == "" {
		cfg.Eval.Fitness = "sphere"
	}
}

func (c *RunConfig) Validate() error {
	if c.GA.Population < 2 {
		return fmt.Errorf("population must be at least 2, got %d", c.GA.Population)
	}
	if c.GA.Generations < 1 {
		return fmt.Errorf("generations must be at least 1, got %d", c.GA.Generations)
	}
	if c.GA.NumParents < 0 {
		return fmt.Errorf("num_parents must not be negative, got %d", c.GA.NumParents)
	}
	if c.GA.MutationRate < 0 || c.GA.MutationRate > 1 {
		return fmt.Errorf("mutation_rate must be in [0,1], got %v", c.GA.MutationRate)
	}
	if c.GA.SwapProbability < 0 || c.GA.SwapProbability > 1 {
		return fmt.Errorf("swap_probability must be in [0,1], got %v", c.GA.SwapProbability)
	}
	if c.GA.ValueMin > c.GA.ValueMax {
		return fmt.Errorf("value_min %v exceeds value_max %v", c.GA.ValueMin, c.GA.ValueMax)
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Eval.Workers)
	}
	return nil
}
