package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// GradAccumSlot is one parameter's running gradient sum across a batch,
// keyed by the tape index it was bound to at construction time (stable
// only until the next Reset).
type GradAccumSlot[T array.Float] struct {
	TapeIndex int
	Sum       *array.Array[T]
	tensor    *Tensor[T]
}

// GradAccumulator sums per-parameter gradients across a mini-batch. It
// resets the tape at construction so parameter indices are compact
// before recording which indices to watch.
type GradAccumulator[T array.Float] struct {
	Slots []*GradAccumSlot[T]
	tape  *Tape[T]
}

// NewGradAccumulator resets t, then creates one zeroed slot per trainable
// Input node remaining on the tape.
func NewGradAccumulator[T array.Float](t *Tape[T]) *GradAccumulator[T] {
	t.Reset()
	acc := &GradAccumulator[T]{tape: t}
	for slot, idx := range t.paramSlots {
		n := t.nodes[idx]
		acc.Slots = append(acc.Slots, &GradAccumSlot[T]{
			TapeIndex: idx,
			Sum:       array.New[T](n.Rows, n.Cols),
			tensor:    t.paramTensors[slot],
		})
	}
	return acc
}

// Add sums gradient's entry at each slot's tape index into that slot.
func (a *GradAccumulator[T]) Add(gradient Gradient[T]) {
	for _, slot := range a.Slots {
		slot.Sum = slot.Sum.Add(gradient.At(slot.TapeIndex))
	}
}

// Reset zeroes every slot's sum in place.
func (a *GradAccumulator[T]) Reset() {
	for _, slot := range a.Slots {
		slot.Sum.Zero()
	}
}

// Apply calls updateFn(slot) for every slot; updateFn is responsible for
// mutating the bound parameter's value array.
func (a *GradAccumulator[T]) Apply(updateFn func(slot *GradAccumSlot[T])) {
	for _, slot := range a.Slots {
		updateFn(slot)
	}
}

// Tensor returns the parameter Tensor bound to this slot, for updateFn
// implementations that need to mutate its Value in place.
func (s *GradAccumSlot[T]) Tensor() *Tensor[T] { return s.tensor }
