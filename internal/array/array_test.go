package array_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenrapp/tapegrad/internal/array"
)

func TestElementWiseArithmetic(t *testing.T) {
	a := array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4})
	b := array.FromRowMajor[float64](2, 2, []float64{5, 6, 7, 8})
	c := array.FromRowMajor[float64](2, 2, []float64{9, 9, 9, 9})

	got := a.Mul(b).Add(c)
	want := array.FromRowMajor[float64](2, 2, []float64{14, 21, 30, 41})
	assert.True(t, got.Equal(want))
}

func TestElementWiseShapeMismatchIsEmpty(t *testing.T) {
	a := array.New[float64](2, 2)
	b := array.New[float64](2, 3)
	got := a.Add(b)
	assert.True(t, got.IsEmpty())
}

func TestMatMul(t *testing.T) {
	a := array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4})
	b := array.FromRowMajor[float64](2, 2, []float64{5, 6, 7, 8})

	got := a.MatMul(b)
	want := array.FromRowMajor[float64](2, 2, []float64{19, 22, 43, 50})
	assert.True(t, got.Equal(want))
}

func TestMatMulFloat32Fallback(t *testing.T) {
	a := array.FromRowMajor[float32](2, 2, []float32{1, 2, 3, 4})
	b := array.FromRowMajor[float32](2, 2, []float32{5, 6, 7, 8})

	got := a.MatMul(b)
	want := array.FromRowMajor[float32](2, 2, []float32{19, 22, 43, 50})
	assert.True(t, got.Equal(want))
}

func TestMatMulShapeMismatch(t *testing.T) {
	a := array.New[float64](2, 3)
	b := array.New[float64](2, 2)
	got := a.MatMul(b)
	assert.True(t, got.IsEmpty())
}

func TestTranspose(t *testing.T) {
	a := array.FromRowMajor[float64](2, 3, []float64{1, 2, 3, 4, 5, 6})
	got := a.Transpose()
	require.Equal(t, 3, got.Rows())
	require.Equal(t, 2, got.Cols())
	assert.Equal(t, float64(4), got.At(0, 1))
	assert.Equal(t, float64(2), got.At(1, 0))
}

func TestSquaredNorm(t *testing.T) {
	a := array.FromRowMajor[float64](1, 3, []float64{1, 2, 3})
	assert.Equal(t, float64(14), a.SquaredNorm())
}

func TestReshapeRowMajor(t *testing.T) {
	a := array.FromRowMajor[float64](2, 3, []float64{1, 2, 3, 4, 5, 6})
	got := a.Reshape(6, 1)
	want := array.FromRowMajor[float64](6, 1, []float64{1, 2, 3, 4, 5, 6})
	assert.True(t, got.Equal(want))
}

func TestBlockAndSetBlock(t *testing.T) {
	a := array.New[float64](4, 4)
	block := array.FromRowMajor[float64](2, 2, []float64{1, 1, 1, 1})
	a.SetBlock(1, 1, block)
	assert.True(t, a.Block(1, 1, 2, 2).Equal(block))
}

func TestAddInPlaceBlockSumsOverlaps(t *testing.T) {
	a := array.New[float64](3, 3)
	one := array.FromRowMajor[float64](2, 2, []float64{1, 1, 1, 1})
	a.AddInPlaceBlock(0, 0, one)
	a.AddInPlaceBlock(1, 1, one)
	assert.Equal(t, float64(2), a.At(1, 1))
	assert.Equal(t, float64(1), a.At(0, 0))
}

func TestReverseRowsAndCols(t *testing.T) {
	a := array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4})
	assert.True(t, a.ReverseRows().Equal(array.FromRowMajor[float64](2, 2, []float64{3, 4, 1, 2})))
	assert.True(t, a.ReverseCols().Equal(array.FromRowMajor[float64](2, 2, []float64{2, 1, 4, 3})))
}

func TestRandomIsWithinRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := array.Random[float64](10, 10, rng)
	for _, v := range a.RowMajor() {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
}
