package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// Split partitions x into numChannels equal slabs along direction,
// returning one Tensor per channel. NoSplit returns []{x} unchanged with
// no new node. Any other direction disables element_wise_only.
func Split[T array.Float](x *Tensor[T], direction SplitDirection, numChannels int) []*Tensor[T] {
	if direction == NoSplit {
		return []*Tensor[T]{x}
	}
	if x.Tape == nil || numChannels <= 0 {
		return []*Tensor[T]{emptyTensor[T]()}
	}
	rows, cols := x.Value.Rows(), x.Value.Cols()

	var chanRows, chanCols int
	switch direction {
	case SplitHorizontal:
		if rows%numChannels != 0 {
			return []*Tensor[T]{emptyTensor[T]()}
		}
		chanRows, chanCols = rows/numChannels, cols
	case SplitVertical:
		if cols%numChannels != 0 {
			return []*Tensor[T]{emptyTensor[T]()}
		}
		chanRows, chanCols = rows, cols/numChannels
	}

	out := make([]*Tensor[T], numChannels)
	for ch := 0; ch < numChannels; ch++ {
		var block *array.Array[T]
		if direction == SplitHorizontal {
			block = x.Value.Block(ch*chanRows, 0, chanRows, chanCols)
		} else {
			block = x.Value.Block(0, ch*chanCols, chanRows, chanCols)
		}
		idx := x.Tape.appendDerived(&Node[T]{
			Kind:    Split,
			Rows:    chanRows,
			Cols:    chanCols,
			Parents: []int{x.Index},
			SplitInfo: &SplitPayload{
				Direction: direction,
				Channel:   ch,
				OrigRows:  rows,
				OrigCols:  cols,
			},
		})
		out[ch] = &Tensor[T]{Value: block, Tape: x.Tape, Index: idx}
	}
	return out
}

// splitPullback zeros an array shaped like the pre-split parent, then
// copies g into the block belonging to this node's channel.
func splitPullback[T array.Float](n *Node[T], g *array.Array[T]) *array.Array[T] {
	info := n.SplitInfo
	out := array.New[T](info.OrigRows, info.OrigCols)
	if info.Direction == SplitHorizontal {
		out.SetBlock(info.Channel*n.Rows, 0, g)
	} else {
		out.SetBlock(0, info.Channel*n.Cols, g)
	}
	return out
}

// VertCat stacks xs vertically; every input must share the same column
// count and tape. Disables element_wise_only.
func VertCat[T array.Float](xs []*Tensor[T]) *Tensor[T] {
	if len(xs) == 0 {
		return emptyTensor[T]()
	}
	if !checkSameTape(xs...) {
		return emptyTensor[T]()
	}
	cols := xs[0].Value.Cols()
	totalRows := 0
	offsets := make([]int, len(xs)+1)
	parents := make([]int, len(xs))
	for i, x := range xs {
		if x.Value.Cols() != cols {
			return emptyTensor[T]()
		}
		offsets[i] = totalRows
		totalRows += x.Value.Rows()
		parents[i] = x.Index
	}
	offsets[len(xs)] = totalRows

	out := array.New[T](totalRows, cols)
	for i, x := range xs {
		out.SetBlock(offsets[i], 0, x.Value)
	}

	tp := xs[0].Tape
	idx := tp.appendDerived(&Node[T]{
		Kind:        VertCat,
		Rows:        totalRows,
		Cols:        cols,
		Parents:     parents,
		VertCatInfo: &VertCatPayload{Offsets: offsets},
	})
	return &Tensor[T]{Value: out, Tape: tp, Index: idx}
}

// vertCatPullback slices rows [offset[p], offset[p+1]) of g.
func vertCatPullback[T array.Float](n *Node[T], g *array.Array[T], p int) *array.Array[T] {
	offsets := n.VertCatInfo.Offsets
	r0, r1 := offsets[p], offsets[p+1]
	return g.Block(r0, 0, r1-r0, g.Cols())
}
