package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"ChurnPull/internal/services/features"
)

// Activation names accepted in model.json.
const (
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationTanh    = "tanh"
	ActivationLinear  = "linear"
)

// DenseLayer is one fully connected layer. Weights are indexed [in][out].
type DenseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// Spec is the serialized form of a dense network.
type Spec struct {
	Name     string       `json:"name,omitempty"`
	InputDim int          `json:"input_dim"`
	Layers   []DenseLayer `json:"layers"`
}

// MLP evaluates a feed-forward network with a single sigmoid-like output.
// It holds no mutable state and is safe for concurrent use.
type MLP struct {
	name     string
	inputDim int
	layers   []DenseLayer
}

// ParseSpec decodes a model.json document.
func ParseSpec(b []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &s, nil
}

// NewMLP validates layer shapes and returns a ready model.
func NewMLP(spec *Spec) (*MLP, error) {
	if spec == nil || len(spec.Layers) == 0 {
		return nil, fmt.Errorf("model has no layers")
	}
	if spec.InputDim <= 0 {
		return nil, fmt.Errorf("model input_dim must be positive, got %d", spec.InputDim)
	}

	width := spec.InputDim
	for i, l := range spec.Layers {
		if len(l.Weights) != width {
			return nil, &features.ShapeMismatchError{
				Stage:    "model",
				Expected: width,
				Got:      len(l.Weights),
				Detail:   fmt.Sprintf("layer %d weight rows", i),
			}
		}
		out := len(l.Bias)
		if out == 0 {
			return nil, fmt.Errorf("layer %d has no units", i)
		}
		for r, row := range l.Weights {
			if len(row) != out {
				return nil, fmt.Errorf("layer %d row %d has %d columns, bias has %d", i, r, len(row), out)
			}
		}
		switch l.Activation {
		case ActivationReLU, ActivationSigmoid, ActivationTanh, ActivationLinear, "":
		default:
			return nil, fmt.Errorf("layer %d: unsupported activation %q", i, l.Activation)
		}
		width = out
	}
	if width != 1 {
		return nil, fmt.Errorf("model must have a single output unit, got %d", width)
	}

	name := spec.Name
	if name == "" {
		name = "mlp"
	}
	return &MLP{name: name, inputDim: spec.InputDim, layers: spec.Layers}, nil
}

func (m *MLP) Name() string { return m.name }

func (m *MLP) InputDim() int { return m.inputDim }

// PredictProba runs the forward pass and clamps the output into [0, 1].
func (m *MLP) PredictProba(ctx context.Context, x []float64) (float64, error) {
	if len(x) != m.inputDim {
		return 0, &features.ShapeMismatchError{Stage: "model", Expected: m.inputDim, Got: len(x)}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a := x
	for _, l := range m.layers {
		next := make([]float64, len(l.Bias))
		copy(next, l.Bias)
		for i, v := range a {
			if v == 0 {
				continue
			}
			for j, w := range l.Weights[i] {
				next[j] += v * w
			}
		}
		for j := range next {
			next[j] = activate(l.Activation, next[j])
		}
		a = next
	}

	p := a[0]
	if math.IsNaN(p) {
		return 0, fmt.Errorf("model produced NaN")
	}
	return math.Min(1, math.Max(0, p)), nil
}

func activate(name string, v float64) float64 {
	switch name {
	case ActivationReLU:
		return math.Max(0, v)
	case ActivationSigmoid:
		return 1 / (1 + math.Exp(-v))
	case ActivationTanh:
		return math.Tanh(v)
	default:
		return v
	}
}
