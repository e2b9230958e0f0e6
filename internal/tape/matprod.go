package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// MatProd returns the matrix product x*y. Requires x.Cols() == y.Rows();
// on mismatch (shape or tape) returns the empty sentinel. Always disables
// element_wise_only.
func MatProd[T array.Float](x, y *Tensor[T]) *Tensor[T] {
	if !checkSameTape(x, y) {
		return emptyTensor[T]()
	}
	if x.Value.Cols() != y.Value.Rows() {
		return emptyTensor[T]()
	}
	out := x.Value.MatMul(y.Value)
	if out.IsEmpty() {
		return emptyTensor[T]()
	}
	yT := y.Value.Transpose()
	xT := x.Value.Transpose()
	idx := x.Tape.appendDerived(&Node[T]{
		Kind:    MatProd,
		Rows:    out.Rows(),
		Cols:    out.Cols(),
		Parents: []int{x.Index, y.Index},
		Local:   []*array.Array[T]{yT, xT},
		MatProd: &MatProdPayload{
			XRows: x.Value.Rows(), XCols: x.Value.Cols(),
			YRows: y.Value.Rows(), YCols: y.Value.Cols(),
		},
	})
	return &Tensor[T]{Value: out, Tape: x.Tape, Index: idx}
}

// matProdPullback computes the pullback of g through a MatProd node to
// parent slot p (0 for X, 1 for Y).
func matProdPullback[T array.Float](n *Node[T], g *array.Array[T], p int) *array.Array[T] {
	switch p {
	case 0:
		// L[0] = Y^T, shape (n, k); g has shape (m, n).
		return g.MatMul(n.Local[0])
	default:
		// L[1] = X^T, shape (k, m); g has shape (m, n).
		return n.Local[1].MatMul(g)
	}
}
