package bench

import (
	"context"
	"math"
	"testing"

	"nexevo/internal/codec"
	"nexevo/internal/factory"
	"nexevo/internal/model"
)

func TestLinearModelParameterLayout(t *testing.T) {
	f := &factory.Factory{}
	m, err := f.New(factory.Spec{
		Architecture: "linear",
		Args:         map[string]any{"in": 3, "out": 2},
	})
	if err != nil {
		t.Fatalf("build linear: %v", err)
	}

	if got := codec.TrainableCount(m); got != 8 {
		t.Fatalf("expected 8 trainable values, got %d", got)
	}

	params := m.Parameters()
	if len(params) != 2 || params[0].Name != "linear.weight" || params[1].Name != "linear.bias" {
		t.Fatalf("unexpected parameter layout: %+v", params)
	}
}

func TestLinearModelForward(t *testing.T) {
	m := NewLinearModel(2, 1)
	m.Parameters()[0].Data = []float64{2, 3} // weight
	m.Parameters()[1].Data = []float64{1}    // bias

	out := m.Forward([]float64{1, 1})
	if len(out) != 1 || out[0] != 6 {
		t.Fatalf("expected [6], got %v", out)
	}
}

func TestMLPModelSizes(t *testing.T) {
	m, err := NewMLPModel([]int{4, 8, 3})
	if err != nil {
		t.Fatalf("build mlp: %v", err)
	}

	total := 0
	for _, p := range m.Parameters() {
		total += p.NumElements()
	}
	// (4+1)*8 + (8+1)*3
	if total != 67 {
		t.Fatalf("expected 67 parameters, got %d", total)
	}

	out := m.Forward([]float64{1, 2, 3, 4})
	if len(out) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(out))
	}
	// All-zero weights collapse every layer to zero.
	if out[0] != 0 || out[1] != 0 || out[2] != 0 {
		t.Fatalf("expected zero outputs from zero weights, got %v", out)
	}
}

func TestMLPModelRejectsBadSizes(t *testing.T) {
	if _, err := NewMLPModel([]int{4, 2}); err == nil {
		t.Fatal("expected error for missing hidden layer")
	}
	if _, err := NewMLPModel([]int{4, 0, 2}); err == nil {
		t.Fatal("expected error for zero-width layer")
	}
}

func TestSphereFitnessOptimumAtZero(t *testing.T) {
	ctx := context.Background()
	m := NewLinearModel(2, 1)

	score, err := sphereFitness(ctx, m, model.EvalContext{})
	if err != nil {
		t.Fatalf("sphere: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected 0 at origin, got %v", score)
	}

	m.Parameters()[0].Data = []float64{1, 2}
	m.Parameters()[1].Data = []float64{3}
	score, err = sphereFitness(ctx, m, model.EvalContext{})
	if err != nil {
		t.Fatalf("sphere: %v", err)
	}
	if score != -14 {
		t.Fatalf("expected -14, got %v", score)
	}
}

func TestRastriginFitnessOptimumAtZero(t *testing.T) {
	ctx := context.Background()
	m := NewLinearModel(2, 1)

	score, err := rastriginFitness(ctx, m, model.EvalContext{})
	if err != nil {
		t.Fatalf("rastrigin: %v", err)
	}
	if math.Abs(score) > 1e-12 {
		t.Fatalf("expected 0 at origin, got %v", score)
	}

	m.Parameters()[0].Data = []float64{1, 0}
	score, err = rastriginFitness(ctx, m, model.EvalContext{})
	if err != nil {
		t.Fatalf("rastrigin: %v", err)
	}
	if score >= 0 {
		t.Fatalf("expected negative score away from origin, got %v", score)
	}
}

func TestArgDefaults(t *testing.T) {
	if got := intArg(nil, "in", 4); got != 4 {
		t.Fatalf("expected fallback 4, got %d", got)
	}
	if got := intArg(map[string]any{"in": float64(6)}, "in", 4); got != 6 {
		t.Fatalf("expected 6 from float64 arg, got %d", got)
	}
	sizes := intSliceArg(map[string]any{"sizes": []any{2, float64(3), int64(1)}}, "sizes", nil)
	if len(sizes) != 3 || sizes[0] != 2 || sizes[1] != 3 || sizes[2] != 1 {
		t.Fatalf("unexpected sizes: %v", sizes)
	}
}
