package tape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

func scalar(v float64) *array.Array[float64] {
	return array.FromRowMajor[float64](1, 1, []float64{v})
}

func TestScalarPolynomialForwardAndGradient(t *testing.T) {
	tp := tape.New[float64]()
	x := tape.Input(tp, scalar(3))
	a := tape.Input(tp, scalar(2))
	b := tape.Input(tp, scalar(1))
	c := tape.Input(tp, scalar(5))

	axx := tape.Mul(tape.Mul(a, x), x)
	bx := tape.Mul(b, x)
	y := tape.Sub(tape.Add(axx, bx), c)

	assert.Equal(t, float64(16), y.Value.At(0, 0))

	g := tape.Grad(y)
	require.False(t, g.IsEmpty())
	assert.Equal(t, float64(13), g.Get(x).At(0, 0))
}

func TestElementWiseProductGradient(t *testing.T) {
	tp := tape.New[float64]()
	a := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4}))
	b := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{5, 6, 7, 8}))
	c := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{9, 9, 9, 9}))

	d := tape.Add(tape.Mul(a, b), c)
	assert.True(t, d.Value.Equal(array.FromRowMajor[float64](2, 2, []float64{14, 21, 30, 41})))

	g := tape.Grad(d)
	require.False(t, g.IsEmpty())
	assert.True(t, g.Get(a).Equal(b.Value))
	assert.True(t, g.Get(c).Equal(array.FromRowMajor[float64](2, 2, []float64{1, 1, 1, 1})))
}

func TestMatProdGradientOnNonScalarOutputIsEmpty(t *testing.T) {
	tp := tape.New[float64]()
	a := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4}))
	b := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{5, 6, 7, 8}))

	c := tape.MatProd(a, b)
	assert.True(t, c.Value.Equal(array.FromRowMajor[float64](2, 2, []float64{19, 22, 43, 50})))

	g := tape.Grad(c)
	assert.True(t, g.IsEmpty())
}

func TestMismatchedShapeAddReturnsEmptyAndAppendsNoNode(t *testing.T) {
	tp := tape.New[float64]()
	a := tape.Input(tp, array.New[float64](2, 2))
	b := tape.Input(tp, array.New[float64](2, 3))

	before := tp.Len()
	out := tape.Add(a, b)
	assert.True(t, out.Value.IsEmpty())
	assert.Equal(t, before, tp.Len())
}

func TestResetPreservesTrainableCountAndOrder(t *testing.T) {
	tp := tape.New[float64]()
	w1 := tape.Parameter(tp, scalar(1))
	w2 := tape.Parameter(tp, scalar(2))

	x := tape.Input(tp, scalar(3))
	_ = tape.Add(tape.Mul(w1, x), w2)

	tp.Reset()
	assert.Equal(t, 2, tp.Len())
	assert.Equal(t, 0, w1.Index)
	assert.Equal(t, 1, w2.Index)
	assert.Equal(t, float64(1), w1.Value.At(0, 0))
	assert.Equal(t, float64(2), w2.Value.At(0, 0))
}

func TestSetTrainableTogglesParamRegistry(t *testing.T) {
	tp := tape.New[float64]()
	x := tape.Input(tp, scalar(1))
	tp.SetTrainable(x, true)

	acc := tape.NewGradAccumulator(tp)
	require.Len(t, acc.Slots, 1)

	tp.SetTrainable(x, false)
	acc2 := tape.NewGradAccumulator(tp)
	assert.Len(t, acc2.Slots, 0)
}
