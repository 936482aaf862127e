// Package bench provides small built-in architectures and closed-form fitness
// landscapes used for exercising the evolution loop end to end without an
// external task.
package bench

import (
	"fmt"
	"math"

	"nexevo/internal/factory"
	"nexevo/internal/model"
)

// LinearModel is a single dense layer with bias.
type LinearModel struct {
	In, Out int
	weight  *model.Tensor
	bias    *model.Tensor
}

func NewLinearModel(in, out int) *LinearModel {
	return &LinearModel{
		In:  in,
		Out: out,
		weight: &model.Tensor{
			Name:  "linear.weight",
			Shape: []int{out, in},
			Data:  make([]float64, out*in),
		},
		bias: &model.Tensor{
			Name:  "linear.bias",
			Shape: []int{out},
			Data:  make([]float64, out),
		},
	}
}

func (m *LinearModel) Parameters() []*model.Tensor {
	return []*model.Tensor{m.weight, m.bias}
}

func (m *LinearModel) Forward(input []float64) []float64 {
	out := make([]float64, m.Out)
	for j := 0; j < m.Out; j++ {
		sum := m.bias.Data[j]
		for i := 0; i < m.In; i++ {
			sum += input[i] * m.weight.Data[j*m.In+i]
		}
		out[j] = sum
	}
	return out
}

type mlpLayer struct {
	in, out int
	weight  *model.Tensor
	bias    *model.Tensor
}

// MLPModel is a feedforward network with tanh hidden activations and a linear
// output layer. Layer widths are fixed at construction.
type MLPModel struct {
	layers []mlpLayer
}

// NewMLPModel builds a network over the given layer sizes, input first and
// output last. At least one hidden layer is required.
func NewMLPModel(sizes []int) (*MLPModel, error) {
	if len(sizes) < 3 {
		return nil, fmt.Errorf("mlp needs input, hidden and output sizes, got %d entries", len(sizes))
	}
	m := &MLPModel{}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		if in <= 0 || out <= 0 {
			return nil, fmt.Errorf("mlp layer %d has non-positive size", l)
		}
		m.layers = append(m.layers, mlpLayer{
			in:  in,
			out: out,
			weight: &model.Tensor{
				Name:  fmt.Sprintf("layer%d.weight", l),
				Shape: []int{out, in},
				Data:  make([]float64, out*in),
			},
			bias: &model.Tensor{
				Name:  fmt.Sprintf("layer%d.bias", l),
				Shape: []int{out},
				Data:  make([]float64, out),
			},
		})
	}
	return m, nil
}

func (m *MLPModel) Parameters() []*model.Tensor {
	params := make([]*model.Tensor, 0, 2*len(m.layers))
	for _, layer := range m.layers {
		params = append(params, layer.weight, layer.bias)
	}
	return params
}

func (m *MLPModel) Forward(input []float64) []float64 {
	current := input
	for l, layer := range m.layers {
		next := make([]float64, layer.out)
		for j := 0; j < layer.out; j++ {
			sum := layer.bias.Data[j]
			for i := 0; i < layer.in; i++ {
				sum += current[i] * layer.weight.Data[j*layer.in+i]
			}
			if l < len(m.layers)-1 {
				sum = math.Tanh(sum)
			}
			next[j] = sum
		}
		current = next
	}
	return current
}

func buildLinear(spec factory.Spec) (model.ParamModel, error) {
	in := intArg(spec.Args, "in", 4)
	out := intArg(spec.Args, "out", 2)
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("linear needs positive in/out, got in=%d out=%d", in, out)
	}
	return NewLinearModel(in, out), nil
}

func buildMLP(spec factory.Spec) (model.ParamModel, error) {
	sizes := intSliceArg(spec.Args, "sizes", []int{4, 8, 2})
	return NewMLPModel(sizes)
}

// Args arrive from YAML or JSON decoding, so numbers may be int, int64 or
// float64 depending on the source.
func intArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return fallback
}

func intSliceArg(args map[string]any, key string, fallback []int) []int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	raw, ok := v.([]any)
	if !ok {
		return fallback
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		switch n := item.(type) {
		case int:
			out = append(out, n)
		case int64:
			out = append(out, int(n))
		case float64:
			out = append(out, int(n))
		default:
			return fallback
		}
	}
	return out
}
