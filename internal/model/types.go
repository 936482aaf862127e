package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is the flat weight vector of one individual: the concatenation, in
// canonical order, of every trainable parameter of a model architecture.
type Genome struct {
	VersionedRecord
	ID     string    `json:"id"`
	Values []float64 `json:"values"`
}

// Clone returns a deep copy; evolution operators never alias genome storage.
func (g Genome) Clone() Genome {
	out := g
	out.Values = make([]float64, len(g.Values))
	copy(out.Values, g.Values)
	return out
}

func (g Genome) Len() int {
	return len(g.Values)
}

// Population is an ordered collection of genomes evolved together. The size
// is nominally constant across generations but may shrink when selection has
// no valid candidates to draw from.
type Population struct {
	VersionedRecord
	ID         string   `json:"id"`
	Genomes    []Genome `json:"genomes"`
	Generation int      `json:"generation"`
}

// Fitness is a score that survives JSON round trips even when it holds the
// negative-infinity failure sentinel, which encoding/json rejects as a raw
// float.
type Fitness float64

func (f Fitness) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

func (f *Fitness) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"-Inf"`:
		*f = Fitness(math.Inf(-1))
		return nil
	case `"+Inf"`:
		*f = Fitness(math.Inf(1))
		return nil
	case `"NaN"`:
		*f = Fitness(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode fitness: %w", err)
	}
	*f = Fitness(v)
	return nil
}

// FailedFitness is the sentinel recorded for an individual whose evaluation
// raised or produced a non-numeric score. It orders below every finite score.
func FailedFitness() float64 {
	return math.Inf(-1)
}

// ValidFitness reports whether f is a usable score. NaN and the failure
// sentinel are both invalid.
func ValidFitness(f float64) bool {
	return !math.IsNaN(f) && f > math.Inf(-1)
}

// Tensor is one named parameter block of a model. Shape is the logical
// dimensionality; Data holds the values in row-major order. Frozen tensors
// are excluded from flatten/restore.
type Tensor struct {
	Name   string
	Shape  []int
	Data   []float64
	Frozen bool
}

// NumElements returns the element count implied by Shape. A tensor with no
// dimensions is a scalar.
func (t *Tensor) NumElements() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// ParamModel is the canonical parameter-enumeration contract. Parameters must
// return the same tensors in the same stable order on every call for a given
// architecture, so that flatten and restore agree on layout.
type ParamModel interface {
	Parameters() []*Tensor
}

// EvalContext is the opaque record handed to every fitness call. Device names
// the target compute device; Tags carry task-specific settings.
type EvalContext struct {
	Device string            `json:"device"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// GenerationDiagnostics summarizes one generation of a run. Mean, min and
// stddev are computed over valid scores only; Failed counts failure sentinels.
type GenerationDiagnostics struct {
	Generation         int     `json:"generation"`
	BestFitness        Fitness `json:"best_fitness"`
	MeanFitness        Fitness `json:"mean_fitness"`
	MinFitness         Fitness `json:"min_fitness"`
	StdDevFitness      Fitness `json:"stddev_fitness"`
	Failed             int     `json:"failed"`
	ParentsSelected    int     `json:"parents_selected"`
	DegradedCrossovers int     `json:"degraded_crossovers"`
}

// RunRecord is the persisted description and outcome of one evolution run.
type RunRecord struct {
	VersionedRecord
	ID               string  `json:"id"`
	CreatedAtUTC     string  `json:"created_at_utc"`
	Architecture     string  `json:"architecture"`
	Fitness          string  `json:"fitness"`
	Selection        string  `json:"selection"`
	Crossover        string  `json:"crossover"`
	Mutation         string  `json:"mutation"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	GenerationsRun   int     `json:"generations_run"`
	Seed             int64   `json:"seed"`
	FinalBestFitness Fitness `json:"final_best_fitness"`
	StopReason       string  `json:"stop_reason"`
}
