package tape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

func TestConvolutionValidCrossCorrelation(t *testing.T) {
	tp := tape.New[float64]()
	mat := tape.Input(tp, array.FromRowMajor[float64](3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	ker := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{1, 0, 0, 1}))

	out := tape.Convolution(mat, ker)
	require.Equal(t, 2, out.Value.Rows())
	require.Equal(t, 2, out.Value.Cols())
	// Window [[1,2],[4,5]] dotted with [[1,0],[0,1]] = 1+5 = 6.
	assert.Equal(t, float64(6), out.Value.At(0, 0))
}

func TestConvolutionKernelLargerThanMatrixIsEmpty(t *testing.T) {
	tp := tape.New[float64]()
	mat := tape.Input(tp, array.New[float64](2, 2))
	ker := tape.Input(tp, array.New[float64](3, 3))
	out := tape.Convolution(mat, ker)
	assert.True(t, out.Value.IsEmpty())
}

func TestConvolutionGradientShapesMatchOperands(t *testing.T) {
	tp := tape.New[float64]()
	mat := tape.Input(tp, array.FromRowMajor[float64](3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	ker := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{1, 0, 0, 1}))

	out := tape.Convolution(mat, ker)
	loss := tape.SquaredNorm(tape.Flatten(out))
	g := tape.Grad(loss)
	require.False(t, g.IsEmpty())
	assert.Equal(t, mat.Value.Rows(), g.Get(mat).Rows())
	assert.Equal(t, mat.Value.Cols(), g.Get(mat).Cols())
	assert.Equal(t, ker.Value.Rows(), g.Get(ker).Rows())
	assert.Equal(t, ker.Value.Cols(), g.Get(ker).Cols())
}
