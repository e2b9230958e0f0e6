package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// Flatten reshapes x, row-major, from (r,c) to (r*c, 1). Disables
// element_wise_only.
func Flatten[T array.Float](x *Tensor[T]) *Tensor[T] {
	if x.Tape == nil {
		return emptyTensor[T]()
	}
	rows, cols := x.Value.Rows(), x.Value.Cols()
	out := x.Value.Clone().Reshape(rows*cols, 1)
	idx := x.Tape.appendDerived(&Node[T]{
		Kind:    Flatten,
		Rows:    rows * cols,
		Cols:    1,
		Parents: []int{x.Index},
	})
	// The parent's own (Rows, Cols) is enough to reshape g back at
	// backward time; no extra payload is needed.
	return &Tensor[T]{Value: out, Tape: x.Tape, Index: idx}
}

// flattenPullback reshapes g, row-major, back to the parent's (r,c).
func flattenPullback[T array.Float](t *Tape[T], n *Node[T], g *array.Array[T]) *array.Array[T] {
	parent := t.Node(n.Parents[0])
	return g.Clone().Reshape(parent.Rows, parent.Cols)
}
