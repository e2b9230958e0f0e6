// Package model assembles the tape's forward operators into trainable
// MLP and CNN architectures, plus the text serialization format used to
// save and load their parameters.
package model

import (
	"math/rand"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// Activation is one of the tape's coefficient-wise nonlinearities,
// applied between dense layers.
type Activation int

const (
	ActivationSigmoid Activation = iota
	ActivationReLU
	ActivationLeakyReLU
)

func applyActivation[T array.Float](act Activation, x *tape.Tensor[T]) *tape.Tensor[T] {
	switch act {
	case ActivationReLU:
		return tape.ReLU(x)
	case ActivationLeakyReLU:
		return tape.LeakyReLU(x)
	default:
		return tape.Sigmoid(x)
	}
}

// MLP is a stack of dense layers, each computing
// activation(matprod(weight, input) + bias). Weights and biases are
// initialized uniformly in [-1, 1), matching original_source's flat
// Eigen::setRandom scheme rather than Xavier scaling (see DESIGN.md).
type MLP[T array.Float] struct {
	t          *tape.Tape[T]
	activation Activation
	weights    []*tape.Tensor[T]
	biases     []*tape.Tensor[T]
}

// NewMLP builds an MLP with the given input size and one layer per
// entry of layerSizes. inputSize and every layer size must be nonzero;
// otherwise this returns a partially-constructed model with a nil Tape,
// per the BadArgumentStructure propagation policy — callers must check
// Valid() before use.
func NewMLP[T array.Float](inputSize int, layerSizes []int, activation Activation, rng *rand.Rand) *MLP[T] {
	if inputSize == 0 || len(layerSizes) == 0 {
		return &MLP[T]{}
	}
	for _, size := range layerSizes {
		if size == 0 {
			return &MLP[T]{}
		}
	}

	t := tape.New[T]()
	m := &MLP[T]{t: t, activation: activation}

	prev := inputSize
	for _, size := range layerSizes {
		w := array.Random[T](size, prev, rng)
		b := array.Random[T](size, 1, rng)
		m.weights = append(m.weights, tape.Parameter(t, w))
		m.biases = append(m.biases, tape.Parameter(t, b))
		prev = size
	}
	return m
}

// Valid reports whether construction succeeded.
func (m *MLP[T]) Valid() bool { return m.t != nil }

// Tape returns the model's tape.
func (m *MLP[T]) Tape() *tape.Tape[T] { return m.t }

// Forward computes the dense stack over a column-vector input. Returns
// the empty sentinel if input's shape does not match the first layer.
func (m *MLP[T]) Forward(input *tape.Tensor[T]) *tape.Tensor[T] {
	if len(m.weights) == 0 || input.Value.Cols() != 1 || input.Value.Rows() != m.weights[0].Value.Cols() {
		return &tape.Tensor[T]{Value: array.Empty[T]()}
	}
	x := input
	for i, w := range m.weights {
		x = applyActivation(m.activation, tape.Add(tape.MatProd(w, x), m.biases[i]))
	}
	return x
}

// ToggleGlobalTrainable flips the trainable flag on every weight and
// bias, fanning out the way original_source's toggleGlobalOptimize walks
// every named parameter tensor.
func (m *MLP[T]) ToggleGlobalTrainable(enable bool) {
	for i := range m.weights {
		m.t.SetTrainable(m.weights[i], enable)
		m.t.SetTrainable(m.biases[i], enable)
	}
}
