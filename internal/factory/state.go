package factory

import (
	"encoding/json"
	"fmt"

	"nexevo/internal/model"
)

// EncodeState serializes a model's parameters as a name-keyed state blob.
// Frozen tensors are included; restore-time trainability decides what the
// genome covers, not the blob.
func EncodeState(m model.ParamModel) ([]byte, error) {
	state := make(map[string][]float64)
	for _, t := range m.Parameters() {
		values := make([]float64, len(t.Data))
		copy(values, t.Data)
		state[t.Name] = values
	}
	return json.Marshal(state)
}

// ApplyState writes a state blob into a model by tensor name. The whole blob
// is validated against the model before anything is written, so a failed
// apply leaves the instance at its default initialization. Blob entries with
// no matching tensor are an error; model tensors absent from the blob keep
// their defaults.
func ApplyState(m model.ParamModel, blob []byte) error {
	var state map[string][]float64
	if err := json.Unmarshal(blob, &state); err != nil {
		return fmt.Errorf("decode state blob: %w", err)
	}

	byName := make(map[string]*model.Tensor)
	for _, t := range m.Parameters() {
		byName[t.Name] = t
	}
	for name, values := range state {
		t, ok := byName[name]
		if !ok {
			return fmt.Errorf("state blob names unknown tensor %q", name)
		}
		if len(values) != t.NumElements() {
			return fmt.Errorf("state blob tensor %q has %d values, model expects %d",
				name, len(values), t.NumElements())
		}
	}

	for name, values := range state {
		copy(byName[name].Data, values)
	}
	return nil
}
