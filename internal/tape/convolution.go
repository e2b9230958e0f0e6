package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// Convolution computes the legacy direct (non-im2col) valid
// cross-correlation of mat with ker: output shape
// (mat.rows-ker.rows+1, mat.cols-ker.cols+1). Returns the empty sentinel
// if ker is larger than mat in either dimension. Retained for
// compatibility with callers that predate the im2col path; prefer Im2Col
// plus MatProd in new code. Always disables element_wise_only.
func Convolution[T array.Float](mat, ker *Tensor[T]) *Tensor[T] {
	if !checkSameTape(mat, ker) {
		return emptyTensor[T]()
	}
	out := convValid(mat.Value, ker.Value)
	if out.IsEmpty() {
		return emptyTensor[T]()
	}
	tp := mat.Tape
	idx := tp.appendDerived(&Node[T]{
		Kind:    Convolution,
		Rows:    out.Rows(),
		Cols:    out.Cols(),
		Parents: []int{mat.Index, ker.Index},
		// Local carries copies of both operand values: the backward
		// pass needs mat for the kernel pullback and ker for the mat
		// pullback, neither of which is otherwise retained by the tape.
		Local: []*array.Array[T]{mat.Value.Clone(), ker.Value.Clone()},
		ConvInfo: &ConvPayload{
			KernelRows: ker.Value.Rows(),
			KernelCols: ker.Value.Cols(),
		},
	})
	return &Tensor[T]{Value: out, Tape: tp, Index: idx}
}

// convValid returns the valid cross-correlation of mat with ker (no
// kernel flip), or the empty sentinel if ker does not fit inside mat.
func convValid[T array.Float](mat, ker *array.Array[T]) *array.Array[T] {
	if ker.Rows() > mat.Rows() || ker.Cols() > mat.Cols() {
		return array.Empty[T]()
	}
	outRows := mat.Rows() - ker.Rows() + 1
	outCols := mat.Cols() - ker.Cols() + 1
	out := array.New[T](outRows, outCols)
	for i := 0; i < outRows; i++ {
		for j := 0; j < outCols; j++ {
			var sum T
			for a := 0; a < ker.Rows(); a++ {
				for b := 0; b < ker.Cols(); b++ {
					sum += mat.At(i+a, j+b) * ker.At(a, b)
				}
			}
			out.Set(i, j, sum)
		}
	}
	return out
}

// convolutionPullback computes the pullback of g through a legacy
// Convolution node to parent slot p: p == 0 (mat) via full correlation of
// g with the 180-degree-rotated kernel; p == 1 (ker) via valid
// cross-correlation of mat with g. This is the standard cross-correlation
// backward pair, expressed directly rather than through
// original_source's ambiguous size-comparison dispatch (see DESIGN.md).
func convolutionPullback[T array.Float](n *Node[T], g *array.Array[T], p int) *array.Array[T] {
	mat, ker := n.Local[0], n.Local[1]
	kr, kc := n.ConvInfo.KernelRows, n.ConvInfo.KernelCols

	if p == 1 {
		return convValid(mat, g)
	}

	rotated := ker.ReverseRows().ReverseCols()
	padded := array.New[T](g.Rows()+2*(kr-1), g.Cols()+2*(kc-1))
	padded.SetBlock(kr-1, kc-1, g)
	return convValid(padded, rotated)
}
