package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// MaxPooling downsamples x by taking the max of each non-overlapping
// (pr,pc) window. Requires rows % pr == 0 && cols % pc == 0; disables
// element_wise_only.
func MaxPooling[T array.Float](x *Tensor[T], pr, pc int) *Tensor[T] {
	if x.Tape == nil {
		return emptyTensor[T]()
	}
	rows, cols := x.Value.Rows(), x.Value.Cols()
	if pr <= 0 || pc <= 0 || rows%pr != 0 || cols%pc != 0 {
		return emptyTensor[T]()
	}
	outRows, outCols := rows/pr, cols/pc
	out := array.New[T](outRows, outCols)
	mask := array.New[T](rows, cols)

	for oi := 0; oi < outRows; oi++ {
		for oj := 0; oj < outCols; oj++ {
			maxI, maxJ := oi*pr, oj*pc
			maxV := x.Value.At(maxI, maxJ)
			for di := 0; di < pr; di++ {
				for dj := 0; dj < pc; dj++ {
					i, j := oi*pr+di, oj*pc+dj
					v := x.Value.At(i, j)
					if v > maxV {
						maxV = v
						maxI, maxJ = i, j
					}
				}
			}
			out.Set(oi, oj, maxV)
			mask.Set(maxI, maxJ, 1)
		}
	}

	idx := x.Tape.appendDerived(&Node[T]{
		Kind:    Pooling,
		Rows:    outRows,
		Cols:    outCols,
		Parents: []int{x.Index},
		Local:   []*array.Array[T]{mask},
		Pooling: &PoolingPayload{PoolRows: pr, PoolCols: pc},
	})
	return &Tensor[T]{Value: out, Tape: x.Tape, Index: idx}
}

// poolingPullback upsamples g by replicating each scalar over its pr x pc
// window, then multiplies coefficient-wise by the stored argmax mask.
func poolingPullback[T array.Float](n *Node[T], g *array.Array[T]) *array.Array[T] {
	pr, pc := n.Pooling.PoolRows, n.Pooling.PoolCols
	mask := n.Local[0]
	upsampled := array.New[T](mask.Rows(), mask.Cols())
	for oi := 0; oi < g.Rows(); oi++ {
		for oj := 0; oj < g.Cols(); oj++ {
			v := g.At(oi, oj)
			for di := 0; di < pr; di++ {
				for dj := 0; dj < pc; dj++ {
					upsampled.Set(oi*pr+di, oj*pc+dj, v)
				}
			}
		}
	}
	return upsampled.Mul(mask)
}
