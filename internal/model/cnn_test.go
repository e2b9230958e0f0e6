package model

import (
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

func smallCNN(rng *rand.Rand) *CNN[float64] {
	return NewCNN[float64](
		6, 6, tape.NoSplit, 1,
		[]ConvLayerConfig{{KernelRows: 3, KernelCols: 3, OutChannels: 2, PoolRows: 2, PoolCols: 2}},
		[]int{4, 2},
		ActivationReLU, rng,
	)
}

func TestCNNForwardShape(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := smallCNN(rng)
	require.True(t, m.Valid())

	input := tape.Input(m.Tape(), array.New[float64](6, 6))
	out := m.Forward(input)
	require.Equal(t, 2, out.Value.Rows())
	require.Equal(t, 1, out.Value.Cols())
}

func TestCNNRejectsImpossibleGeometry(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// A 3x3 kernel over a 4x4 input leaves a 2x2 map, which a 3x3 pool
	// cannot evenly divide.
	bad := NewCNN[float64](
		4, 4, tape.NoSplit, 1,
		[]ConvLayerConfig{{KernelRows: 3, KernelCols: 3, OutChannels: 2, PoolRows: 3, PoolCols: 3}},
		[]int{2},
		ActivationReLU, rng,
	)
	assert.False(t, bad.Valid())
}

func TestCNNBackpropReachesConvWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := smallCNN(rng)

	input := tape.Input(m.Tape(), array.Random[float64](6, 6, rng))
	out := m.Forward(input)
	target := tape.Input(m.Tape(), array.New[float64](2, 1))
	loss := tape.SquaredNorm(tape.Sub(out, target))

	g := tape.Grad(loss)
	require.False(t, g.IsEmpty())
	dw := g.Get(m.convWeights[0])
	assert.Equal(t, m.convWeights[0].Value.Rows(), dw.Rows())
	assert.Equal(t, m.convWeights[0].Value.Cols(), dw.Cols())
}

func TestCNNSaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	m := smallCNN(rng)

	path := t.TempDir() + "/cnn.txt"
	require.NoError(t, m.Save(path))
	defer os.Remove(path)

	loaded, err := LoadCNN[float64](path, 6, 6, ActivationReLU)
	require.NoError(t, err)

	sample := array.Random[float64](6, 6, rng)
	out1 := m.Forward(tape.Input(m.Tape(), sample))
	out2 := loaded.Forward(tape.Input(loaded.Tape(), sample))

	require.Equal(t, out1.Value.Rows(), out2.Value.Rows())
	for i := 0; i < out1.Value.Rows(); i++ {
		assert.InDelta(t, out1.Value.At(i, 0), out2.Value.At(i, 0), 1e-4)
	}
}
