package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// SquaredNorm returns the (1,1) Frobenius squared norm of x. Local
// derivative is 2*x. Always disables element_wise_only.
func SquaredNorm[T array.Float](x *Tensor[T]) *Tensor[T] {
	if x.Tape == nil {
		return emptyTensor[T]()
	}
	out := array.New[T](1, 1)
	out.Set(0, 0, x.Value.SquaredNorm())
	local := x.Value.Scale(2)
	idx := x.Tape.appendDerived(&Node[T]{
		Kind:    Scalar,
		Rows:    1,
		Cols:    1,
		Parents: []int{x.Index},
		Local:   []*array.Array[T]{local},
	})
	return &Tensor[T]{Value: out, Tape: x.Tape, Index: idx}
}

// scalarPullback returns L * g[0,0], broadcasting the (1,1) incoming
// gradient over L's shape.
func scalarPullback[T array.Float](n *Node[T], g *array.Array[T]) *array.Array[T] {
	return n.Local[0].Scale(g.At(0, 0))
}
