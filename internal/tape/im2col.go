package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// Im2Col lowers numChannels equal-shaped input channels into a single
// column matrix suitable for convolution-as-matmul: rows are
// numChannels*kr*kc, one row-block per channel; columns are the
// kr x kc windows enumerated in row-major window order. Disables
// element_wise_only.
func Im2Col[T array.Float](xs []*Tensor[T], kr, kc int) *Tensor[T] {
	if len(xs) == 0 || !checkSameTape(xs...) {
		return emptyTensor[T]()
	}
	chanRows, chanCols := xs[0].Value.Rows(), xs[0].Value.Cols()
	if chanRows < kr || chanCols < kc || kr <= 0 || kc <= 0 {
		return emptyTensor[T]()
	}
	for _, x := range xs {
		if x.Value.Rows() != chanRows || x.Value.Cols() != chanCols {
			return emptyTensor[T]()
		}
	}

	winRows := chanRows - kr + 1
	winCols := chanCols - kc + 1
	numWindows := winRows * winCols
	numChannels := len(xs)

	out := array.New[T](numChannels*kr*kc, numWindows)
	for c, x := range xs {
		col := 0
		for wr := 0; wr < winRows; wr++ {
			for wc := 0; wc < winCols; wc++ {
				window := x.Value.Block(wr, wc, kr, kc)
				for i := 0; i < kr; i++ {
					for j := 0; j < kc; j++ {
						out.Set(c*kr*kc+i*kc+j, col, window.At(i, j))
					}
				}
				col++
			}
		}
	}

	parents := make([]int, numChannels)
	for i, x := range xs {
		parents[i] = x.Index
	}

	tp := xs[0].Tape
	idx := tp.appendDerived(&Node[T]{
		Kind:    Im2Col,
		Rows:    numChannels * kr * kc,
		Cols:    numWindows,
		Parents: parents,
		Im2ColInfo: &Im2ColPayload{
			KernelRows: kr, KernelCols: kc,
			ChanRows: chanRows, ChanCols: chanCols,
			NumChannels: numChannels,
		},
	})
	return &Tensor[T]{Value: out, Tape: tp, Index: idx}
}

// im2colPullback scatters the p-th row-block of g back to the kr x kc
// windows of channel p, summing overlapping window contributions.
func im2colPullback[T array.Float](n *Node[T], g *array.Array[T], p int) *array.Array[T] {
	info := n.Im2ColInfo
	kr, kc := info.KernelRows, info.KernelCols
	winRows := info.ChanRows - kr + 1
	winCols := info.ChanCols - kc + 1

	out := array.New[T](info.ChanRows, info.ChanCols)
	rowBase := p * kr * kc
	col := 0
	for wr := 0; wr < winRows; wr++ {
		for wc := 0; wc < winCols; wc++ {
			window := array.New[T](kr, kc)
			for i := 0; i < kr; i++ {
				for j := 0; j < kc; j++ {
					window.Set(i, j, g.At(rowBase+i*kc+j, col))
				}
			}
			out.AddInPlaceBlock(wr, wc, window)
			col++
		}
	}
	return out
}

// Col2Im lifts each row of m (numChannels x outRows*outCols) into its own
// (outRows, outCols) output channel, one Node per channel. Disables
// element_wise_only.
func Col2Im[T array.Float](m *Tensor[T], outRows, outCols int) []*Tensor[T] {
	if m.Tape == nil || m.Value.Cols() != outRows*outCols {
		return []*Tensor[T]{emptyTensor[T]()}
	}
	out := make([]*Tensor[T], m.Value.Rows())
	for r := 0; r < m.Value.Rows(); r++ {
		row := m.Value.Block(r, 0, 1, outRows*outCols)
		channel := row.Clone().Reshape(outRows, outCols)
		idx := m.Tape.appendDerived(&Node[T]{
			Kind:    Col2Im,
			Rows:    outRows,
			Cols:    outCols,
			Parents: []int{m.Index},
			Col2ImInfo: &Col2ImPayload{
				Row: r, OutRows: outRows, OutCols: outCols,
			},
		})
		out[r] = &Tensor[T]{Value: channel, Tape: m.Tape, Index: idx}
	}
	return out
}

// col2imPullback zeros a matrix shaped like the parent im2col-style
// block, then places the row-major flattening of g into this node's row.
func col2imPullback[T array.Float](t *Tape[T], n *Node[T], g *array.Array[T]) *array.Array[T] {
	parent := t.Node(n.Parents[0])
	out := array.New[T](parent.Rows, parent.Cols)
	flat := g.Clone().Reshape(1, n.Col2ImInfo.OutRows*n.Col2ImInfo.OutCols)
	out.SetBlock(n.Col2ImInfo.Row, 0, flat)
	return out
}
