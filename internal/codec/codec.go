// Package codec converts between a model's structured parameters and a flat
// genome vector. Flatten and Restore share one canonical layout: the order of
// Parameters(), trainable tensors only, row-major within each tensor.
package codec

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"nexevo/internal/model"
)

var (
	// ErrShapeMismatch reports a genome whose length does not match the
	// model's trainable element count, or a tensor whose Data disagrees
	// with its Shape. Restore fails hard on it and writes nothing.
	ErrShapeMismatch = errors.New("genome/parameter shape mismatch")
)

type Codec struct {
	Log logr.Logger
}

func New(log logr.Logger) *Codec {
	return &Codec{Log: log}
}

// TrainableCount returns the total element count of the model's trainable
// tensors.
func TrainableCount(m model.ParamModel) int {
	total := 0
	for _, t := range m.Parameters() {
		if t.Frozen {
			continue
		}
		total += t.NumElements()
	}
	return total
}

// Flatten concatenates every trainable tensor into one vector. A model with
// zero trainable parameters yields an empty genome; that is diagnosed, not an
// error.
func (c *Codec) Flatten(m model.ParamModel) []float64 {
	out := make([]float64, 0, TrainableCount(m))
	for _, t := range m.Parameters() {
		if t.Frozen {
			continue
		}
		out = append(out, t.Data...)
	}
	if len(out) == 0 {
		c.Log.Info("no trainable parameters to flatten")
	}
	return out
}

// Restore writes genome values back into the model's trainable tensors in the
// same canonical order Flatten uses. The whole layout is validated before the
// first write, so a failed Restore leaves the model untouched.
func (c *Codec) Restore(m model.ParamModel, genome []float64) error {
	params := m.Parameters()

	total := 0
	for _, t := range params {
		if t.Frozen {
			continue
		}
		numel := t.NumElements()
		if len(t.Data) != numel {
			return fmt.Errorf("%w: tensor %q has %d values for shape %v",
				ErrShapeMismatch, t.Name, len(t.Data), t.Shape)
		}
		total += numel
	}
	if total != len(genome) {
		return fmt.Errorf("%w: model requires %d elements, genome has %d",
			ErrShapeMismatch, total, len(genome))
	}

	offset := 0
	for _, t := range params {
		if t.Frozen {
			continue
		}
		numel := t.NumElements()
		copy(t.Data, genome[offset:offset+numel])
		offset += numel
	}
	return nil
}
