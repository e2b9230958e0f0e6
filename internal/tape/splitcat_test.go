package tape_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

func TestSplitHorizontalAndVertCatRoundTrip(t *testing.T) {
	tp := tape.New[float64]()
	x := tape.Input(tp, array.FromRowMajor[float64](4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	}))

	parts := tape.Split(x, tape.SplitHorizontal, 2)
	require.Len(t, parts, 2)
	assert.True(t, parts[0].Value.Equal(array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4})))
	assert.True(t, parts[1].Value.Equal(array.FromRowMajor[float64](2, 2, []float64{5, 6, 7, 8})))

	cat := tape.VertCat(parts)
	assert.True(t, cat.Value.Equal(x.Value))

	loss := tape.SquaredNorm(tape.Flatten(cat))
	g := tape.Grad(loss)
	require.False(t, g.IsEmpty())
	want := x.Value.Scale(2)
	assert.True(t, g.Get(x).Equal(want))
}

func TestNoSplitReturnsInputUnchanged(t *testing.T) {
	tp := tape.New[float64]()
	x := tape.Input(tp, array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4}))
	before := tp.Len()
	parts := tape.Split(x, tape.NoSplit, 1)
	require.Len(t, parts, 1)
	assert.Same(t, x, parts[0])
	assert.Equal(t, before, tp.Len())
}

func TestFlattenReshapesRowMajor(t *testing.T) {
	tp := tape.New[float64]()
	x := tape.Input(tp, array.FromRowMajor[float64](2, 3, []float64{1, 2, 3, 4, 5, 6}))
	flat := tape.Flatten(x)
	assert.True(t, flat.Value.Equal(array.FromRowMajor[float64](6, 1, []float64{1, 2, 3, 4, 5, 6})))

	loss := tape.SquaredNorm(flat)
	g := tape.Grad(loss)
	require.False(t, g.IsEmpty())
	assert.True(t, g.Get(x).Equal(x.Value.Scale(2)))
}
