package tape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

func TestMaxPoolingAllEqualWindows(t *testing.T) {
	tp := tape.New[float64]()
	data := make([]float64, 6*9)
	for i := range data {
		data[i] = 42
	}
	x := tape.Input(tp, array.FromRowMajor[float64](6, 9, data))

	pooled := tape.MaxPooling(x, 3, 3)
	require.Equal(t, 2, pooled.Value.Rows())
	require.Equal(t, 3, pooled.Value.Cols())
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, float64(42), pooled.Value.At(i, j))
		}
	}

	loss := tape.SquaredNorm(pooled)
	g := tape.Grad(loss)
	require.False(t, g.IsEmpty())

	grad := g.Get(x)
	nonzero := 0
	for i := 0; i < 6; i++ {
		for j := 0; j < 9; j++ {
			v := grad.At(i, j)
			if v != 0 {
				nonzero++
				assert.Equal(t, float64(84), v)
			}
		}
	}
	assert.Equal(t, 6, nonzero)
}

func TestMaxPoolingBadDimensionsIsEmpty(t *testing.T) {
	tp := tape.New[float64]()
	x := tape.Input(tp, array.New[float64](5, 9))
	out := tape.MaxPooling(x, 3, 3)
	assert.True(t, out.Value.IsEmpty())
}
