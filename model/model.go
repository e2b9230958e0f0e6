// Package model is the public surface for trainable architectures: MLP
// (dense stack) and CNN (convolution/pooling stack feeding a dense
// stack), plus their text-format save/load.
package model

import (
	"math/rand"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/model"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// Activation selects the coefficient-wise nonlinearity applied between
// layers.
type Activation = model.Activation

const (
	ActivationSigmoid   = model.ActivationSigmoid
	ActivationReLU      = model.ActivationReLU
	ActivationLeakyReLU = model.ActivationLeakyReLU
)

// MLP is a stack of dense layers.
type MLP[T array.Float] = model.MLP[T]

// NewMLP builds an MLP with the given input size and one layer per
// entry of layerSizes.
func NewMLP[T array.Float](inputSize int, layerSizes []int, activation Activation, rng *rand.Rand) *MLP[T] {
	return model.NewMLP[T](inputSize, layerSizes, activation, rng)
}

// LoadMLP reads a file written by (*MLP).Save.
func LoadMLP[T array.Float](path string, activation Activation) (*MLP[T], error) {
	return model.LoadMLP[T](path, activation)
}

// ConvLayerConfig describes one convolution+pooling stage.
type ConvLayerConfig = model.ConvLayerConfig

// CNN is a stack of convolution/pooling stages feeding a dense stack.
type CNN[T array.Float] = model.CNN[T]

// NewCNN builds a CNN over an inputRows x inputCols input, optionally
// split into inputChannels slabs along splitDirection before the first
// convolution layer.
func NewCNN[T array.Float](
	inputRows, inputCols int,
	splitDirection tape.SplitDirection, inputChannels int,
	convLayers []ConvLayerConfig, denseLayers []int,
	activation Activation, rng *rand.Rand,
) *CNN[T] {
	return model.NewCNN[T](inputRows, inputCols, splitDirection, inputChannels, convLayers, denseLayers, activation, rng)
}

// LoadCNN reads a file written by (*CNN).Save.
func LoadCNN[T array.Float](path string, inputRows, inputCols int, activation Activation) (*CNN[T], error) {
	return model.LoadCNN[T](path, inputRows, inputCols, activation)
}
