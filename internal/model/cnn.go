package model

import (
	"math/rand"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// ConvLayerConfig describes one convolution+pooling stage: a kernel of
// (KernelRows, KernelCols) producing OutChannels output channels,
// followed by an optional (PoolRows, PoolCols) max-pool. A pool size of
// (0, 0) skips pooling for that layer, matching original_source's
// pooling-size-zero convention.
type ConvLayerConfig struct {
	KernelRows, KernelCols int
	OutChannels            int
	PoolRows, PoolCols     int
}

// CNN is a stack of convolution/pooling stages feeding a dense stack,
// following original_source's ConvolutionalNetwork pipeline: per-channel
// convolution, optional pooling, activation, then flatten and dense
// layers. Convolution here is expressed through Im2Col + MatProd +
// Col2Im rather than the legacy per-channel Convolution node, per the
// im2col path recommended for new code; there is no per-channel
// convolution bias, matching original_source (only the dense stack has
// biases).
type CNN[T array.Float] struct {
	t          *tape.Tape[T]
	activation Activation

	inputRows, inputCols int
	splitDirection        tape.SplitDirection
	inputChannels         int
	convLayers            []ConvLayerConfig

	// convWeights[i] has shape (OutChannels_i, InChannels_i*kr_i*kc_i).
	// A single (outChannel, inChannel) kernel is a kr_i x kc_i block of
	// this combined parameter's row for that output channel; see
	// serialize.go for how those blocks are sliced out and reassembled.
	convWeights []*tape.Tensor[T]

	denseWeights []*tape.Tensor[T]
	denseBiases  []*tape.Tensor[T]
}

// NewCNN validates the convolution/pooling geometry the way
// original_source's constructor does (every convolution and pooling
// step must be geometrically possible) and, on success, allocates
// uniformly-random parameters in [-1, 1). Returns a model with a nil
// Tape (see Valid) on any BadArgumentStructure condition.
func NewCNN[T array.Float](inputRows, inputCols int, splitDirection tape.SplitDirection, inputChannels int, convLayers []ConvLayerConfig, denseLayers []int, activation Activation, rng *rand.Rand) *CNN[T] {
	if inputRows == 0 || inputCols == 0 {
		return &CNN[T]{}
	}
	if splitDirection == tape.NoSplit {
		inputChannels = 1
	} else if inputChannels <= 0 {
		return &CNN[T]{}
	}

	rows, cols := inputRows, inputCols
	switch splitDirection {
	case tape.SplitHorizontal:
		if rows%inputChannels != 0 {
			return &CNN[T]{}
		}
		rows /= inputChannels
	case tape.SplitVertical:
		if cols%inputChannels != 0 {
			return &CNN[T]{}
		}
		cols /= inputChannels
	}

	inChannels := inputChannels
	for _, layer := range convLayers {
		if layer.OutChannels == 0 || layer.KernelRows == 0 || layer.KernelCols == 0 {
			return &CNN[T]{}
		}
		rows -= layer.KernelRows - 1
		cols -= layer.KernelCols - 1
		if rows <= 0 || cols <= 0 {
			return &CNN[T]{}
		}
		if layer.PoolRows != 0 || layer.PoolCols != 0 {
			if layer.PoolRows <= 0 || layer.PoolCols <= 0 || rows%layer.PoolRows != 0 || cols%layer.PoolCols != 0 {
				return &CNN[T]{}
			}
			rows /= layer.PoolRows
			cols /= layer.PoolCols
		}
		inChannels = layer.OutChannels
	}
	for _, size := range denseLayers {
		if size == 0 {
			return &CNN[T]{}
		}
	}

	t := tape.New[T]()
	m := &CNN[T]{
		t: t, activation: activation,
		inputRows: inputRows, inputCols: inputCols,
		splitDirection: splitDirection, inputChannels: inputChannels,
		convLayers: convLayers,
	}

	inChannels = inputChannels
	for _, layer := range convLayers {
		w := array.Random[T](layer.OutChannels, inChannels*layer.KernelRows*layer.KernelCols, rng)
		m.convWeights = append(m.convWeights, tape.Parameter(t, w))
		inChannels = layer.OutChannels
	}

	flatSize := rows * cols * inChannels
	prev := flatSize
	for _, size := range denseLayers {
		w := array.Random[T](size, prev, rng)
		b := array.Random[T](size, 1, rng)
		m.denseWeights = append(m.denseWeights, tape.Parameter(t, w))
		m.denseBiases = append(m.denseBiases, tape.Parameter(t, b))
		prev = size
	}
	return m
}

// Valid reports whether construction succeeded.
func (m *CNN[T]) Valid() bool { return m.t != nil }

// Tape returns the model's tape.
func (m *CNN[T]) Tape() *tape.Tape[T] { return m.t }

// Forward runs the convolution/pooling stages then the dense stack.
// Returns the empty sentinel if input's shape does not match the
// configured input size.
func (m *CNN[T]) Forward(input *tape.Tensor[T]) *tape.Tensor[T] {
	if input.Value.Rows() != m.inputRows || input.Value.Cols() != m.inputCols {
		return &tape.Tensor[T]{Value: array.Empty[T]()}
	}

	channels := tape.Split(input, m.splitDirection, m.inputChannels)
	if len(channels) == 0 || channels[0].Value.IsEmpty() {
		return &tape.Tensor[T]{Value: array.Empty[T]()}
	}
	rows, cols := channels[0].Value.Rows(), channels[0].Value.Cols()

	for i, layer := range m.convLayers {
		col := tape.Im2Col(channels, layer.KernelRows, layer.KernelCols)
		if col.Value.IsEmpty() {
			return &tape.Tensor[T]{Value: array.Empty[T]()}
		}
		flatOut := tape.MatProd(m.convWeights[i], col)

		outRows := rows - layer.KernelRows + 1
		outCols := cols - layer.KernelCols + 1
		lifted := tape.Col2Im(flatOut, outRows, outCols)

		next := make([]*tape.Tensor[T], len(lifted))
		for c, channel := range lifted {
			x := channel
			if layer.PoolRows != 0 || layer.PoolCols != 0 {
				x = tape.MaxPooling(x, layer.PoolRows, layer.PoolCols)
			}
			next[c] = applyActivation(m.activation, x)
		}
		channels = next
		rows, cols = next[0].Value.Rows(), next[0].Value.Cols()
	}

	x := tape.Flatten(tape.VertCat(channels))
	for i, w := range m.denseWeights {
		x = applyActivation(m.activation, tape.Add(tape.MatProd(w, x), m.denseBiases[i]))
	}
	return x
}

// ToggleGlobalTrainable flips the trainable flag on every kernel, weight
// and bias.
func (m *CNN[T]) ToggleGlobalTrainable(enable bool) {
	for _, w := range m.convWeights {
		m.t.SetTrainable(w, enable)
	}
	for i := range m.denseWeights {
		m.t.SetTrainable(m.denseWeights[i], enable)
		m.t.SetTrainable(m.denseBiases[i], enable)
	}
}
