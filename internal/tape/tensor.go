package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// Tensor binds a value array to a position on a Tape. Two Tensors built
// from the same Tape share it; every forward operator checks Tape
// identity before touching operands (see checkSameTape).
type Tensor[T array.Float] struct {
	Value *array.Array[T]
	Tape  *Tape[T]
	Index int
}

// emptyTensor is the in-band sentinel returned by every forward operator
// on shape or tape mismatch: an empty value with no backing node.
func emptyTensor[T array.Float]() *Tensor[T] {
	return &Tensor[T]{Value: array.Empty[T]()}
}

// Input creates a non-trainable Tensor: a fresh per-sample value pushed
// as an Input node. It does not survive the next Reset.
func Input[T array.Float](t *Tape[T], value *array.Array[T]) *Tensor[T] {
	idx := t.appendInput(value.Rows(), value.Cols(), false)
	return &Tensor[T]{Value: value, Tape: t, Index: idx}
}

// Parameter creates a trainable Tensor: an Input node allocated a
// ParamRegistry slot, surviving every Reset. The returned handle is
// registered with the tape so Reset can patch its Index in place.
func Parameter[T array.Float](t *Tape[T], value *array.Array[T]) *Tensor[T] {
	idx := t.appendInput(value.Rows(), value.Cols(), true)
	tensor := &Tensor[T]{Value: value, Tape: t, Index: idx}
	t.registerParamTensor(tensor)
	return tensor
}

// checkSameTape reports whether every tensor shares the same non-nil
// Tape pointer.
func checkSameTape[T array.Float](ts ...*Tensor[T]) bool {
	if len(ts) == 0 {
		return true
	}
	tp := ts[0].Tape
	if tp == nil {
		return false
	}
	for _, t := range ts[1:] {
		if t.Tape != tp {
			return false
		}
	}
	return true
}
