package model

import (
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// buildFixedMLP wires an explicit weight/bias pair directly, bypassing
// NewMLP's random initialization, for numeric comparison against known
// reference outputs.
func buildFixedMLP(w, b *array.Array[float64]) *MLP[float64] {
	t := tape.New[float64]()
	return &MLP[float64]{
		t:          t,
		activation: ActivationSigmoid,
		weights:    []*tape.Tensor[float64]{tape.Parameter(t, w)},
		biases:     []*tape.Tensor[float64]{tape.Parameter(t, b)},
	}
}

func TestMLPSingleLayerForwardAndLoss(t *testing.T) {
	w := array.FromRowMajor[float64](3, 2, []float64{
		0.5, 0.5,
		2, 3,
		0, 6,
	})
	b := array.FromRowMajor[float64](3, 1, []float64{-0.2, 0.2, 0.3})
	m := buildFixedMLP(w, b)

	input := tape.Input(m.t, array.FromRowMajor[float64](2, 1, []float64{0.6, 0.4}))
	out := m.Forward(input)

	want := []float64{0.5744, 0.9309, 0.9370}
	for i, w := range want {
		assert.InDelta(t, w, out.Value.At(i, 0), 1e-4)
	}

	target := tape.Input(m.t, array.FromRowMajor[float64](3, 1, []float64{0, 1, 0}))
	diff := tape.Sub(out, target)
	loss := tape.SquaredNorm(diff)
	assert.InDelta(t, 1.2128, loss.Value.At(0, 0), 1e-4)

	g := tape.Grad(loss)
	require.False(t, g.IsEmpty())
	dw := g.Get(m.weights[0])
	db := g.Get(m.biases[0])
	assert.Equal(t, 3, dw.Rows())
	assert.Equal(t, 2, dw.Cols())
	assert.Equal(t, 3, db.Rows())

	// Cross-check dW against the chain rule directly: dL/dW[i][j] =
	// 2*(out_i - target_i) * out_i*(1-out_i) * input_j.
	outVals := []float64{out.Value.At(0, 0), out.Value.At(1, 0), out.Value.At(2, 0)}
	targetVals := []float64{0, 1, 0}
	inputVals := []float64{0.6, 0.4}
	for i := 0; i < 3; i++ {
		delta := 2 * (outVals[i] - targetVals[i]) * outVals[i] * (1 - outVals[i])
		for j := 0; j < 2; j++ {
			assert.InDelta(t, delta*inputVals[j], dw.At(i, j), 1e-4)
		}
		assert.InDelta(t, delta, db.At(i, 0), 1e-4)
	}
}

func TestNewMLPZeroSizeIsInvalid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.False(t, NewMLP[float64](0, []int{3}, ActivationSigmoid, rng).Valid())
	assert.False(t, NewMLP[float64](2, []int{0}, ActivationSigmoid, rng).Valid())
	assert.False(t, NewMLP[float64](2, nil, ActivationSigmoid, rng).Valid())
}

func TestMLPForwardShapeMismatchIsEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMLP[float64](2, []int{3}, ActivationSigmoid, rng)
	input := tape.Input(m.Tape(), array.New[float64](3, 1))
	out := m.Forward(input)
	assert.True(t, out.Value.IsEmpty())
}

func TestMLPToggleGlobalTrainable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMLP[float64](2, []int{3, 1}, ActivationSigmoid, rng)
	m.ToggleGlobalTrainable(false)
	acc := tape.NewGradAccumulator(m.Tape())
	assert.Len(t, acc.Slots, 0)
}

func TestMLPSaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := NewMLP[float64](2, []int{4, 3}, ActivationReLU, rng)

	path := t.TempDir() + "/mlp.txt"
	require.NoError(t, m.Save(path))
	defer os.Remove(path)

	loaded, err := LoadMLP[float64](path, ActivationReLU)
	require.NoError(t, err)

	sample := array.FromRowMajor[float64](2, 1, []float64{0.3, -0.7})
	out1 := m.Forward(tape.Input(m.Tape(), sample))
	out2 := loaded.Forward(tape.Input(loaded.Tape(), sample))

	require.Equal(t, out1.Value.Rows(), out2.Value.Rows())
	for i := 0; i < out1.Value.Rows(); i++ {
		assert.True(t, math.Abs(out1.Value.At(i, 0)-out2.Value.At(i, 0)) < 1e-4)
	}
}
