package codec

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-logr/logr"

	"nexevo/internal/model"
)

type stubModel struct {
	params []*model.Tensor
}

func (m *stubModel) Parameters() []*model.Tensor {
	return m.params
}

func newStubModel(rng *rand.Rand) *stubModel {
	weight := &model.Tensor{Name: "fc.weight", Shape: []int{3, 2}, Data: make([]float64, 6)}
	bias := &model.Tensor{Name: "fc.bias", Shape: []int{3}, Data: make([]float64, 3)}
	frozen := &model.Tensor{Name: "embed.weight", Shape: []int{2, 2}, Data: []float64{9, 9, 9, 9}, Frozen: true}
	for i := range weight.Data {
		weight.Data[i] = rng.NormFloat64()
	}
	for i := range bias.Data {
		bias.Data[i] = rng.NormFloat64()
	}
	return &stubModel{params: []*model.Tensor{weight, bias, frozen}}
}

func TestFlattenRestoreRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := New(logr.Discard())

	src := newStubModel(rng)
	genome := c.Flatten(src)
	if len(genome) != 9 {
		t.Fatalf("flatten length: got %d want 9", len(genome))
	}

	dst := newStubModel(rand.New(rand.NewSource(99)))
	if err := c.Restore(dst, genome); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i, p := range src.Parameters() {
		q := dst.Parameters()[i]
		if p.Frozen {
			for j, v := range q.Data {
				if v != 9 {
					t.Fatalf("frozen tensor %s[%d] overwritten: %v", q.Name, j, v)
				}
			}
			continue
		}
		for j := range p.Data {
			if p.Data[j] != q.Data[j] {
				t.Fatalf("tensor %s[%d]: got %v want %v", q.Name, j, q.Data[j], p.Data[j])
			}
		}
	}
}

func TestFlattenNoTrainableParameters(t *testing.T) {
	c := New(logr.Discard())
	m := &stubModel{params: []*model.Tensor{
		{Name: "frozen", Shape: []int{2}, Data: []float64{1, 2}, Frozen: true},
	}}
	genome := c.Flatten(m)
	if len(genome) != 0 {
		t.Fatalf("expected empty genome, got %d values", len(genome))
	}
}

func TestRestoreLengthMismatchLeavesModelUntouched(t *testing.T) {
	c := New(logr.Discard())
	m := newStubModel(rand.New(rand.NewSource(3)))

	before := c.Flatten(m)
	err := c.Restore(m, make([]float64, len(before)+1))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	after := c.Flatten(m)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("partial write at %d: %v != %v", i, after[i], before[i])
		}
	}
}

func TestRestoreInconsistentTensorFailsBeforeWriting(t *testing.T) {
	c := New(logr.Discard())
	good := &model.Tensor{Name: "a", Shape: []int{2}, Data: []float64{1, 2}}
	bad := &model.Tensor{Name: "b", Shape: []int{3}, Data: []float64{1}} // shape says 3, data has 1
	m := &stubModel{params: []*model.Tensor{good, bad}}

	err := c.Restore(m, []float64{5, 6, 7, 8, 9})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if good.Data[0] != 1 || good.Data[1] != 2 {
		t.Fatalf("tensor written despite failed validation: %v", good.Data)
	}
}

func TestTrainableCountSkipsFrozen(t *testing.T) {
	m := newStubModel(rand.New(rand.NewSource(1)))
	if got := TrainableCount(m); got != 9 {
		t.Fatalf("trainable count: got %d want 9", got)
	}
}
