package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// Tape is the append-only Wengert list: an ordered sequence of Nodes
// plus the bookkeeping Reset needs to compact away everything but
// trainable parameters.
type Tape[T array.Float] struct {
	nodes           []*Node[T]
	elementWiseOnly bool

	// paramSlots[slot] is the tape index of the parameter bound to
	// that ParamRegistry slot; order is enumeration order of trainable
	// inputs appended so far.
	paramSlots []int
	// paramTensors runs parallel to paramSlots; Reset patches each
	// tensor's Index field in place so callers holding the pointer see
	// the post-compaction index.
	paramTensors []*Tensor[T]
}

// New returns an empty tape.
func New[T array.Float]() *Tape[T] {
	return &Tape[T]{elementWiseOnly: true}
}

// Len returns the current node count.
func (t *Tape[T]) Len() int { return len(t.nodes) }

// ElementWiseOnly reports whether every node appended so far is Input or
// ElementWise.
func (t *Tape[T]) ElementWiseOnly() bool { return t.elementWiseOnly }

// Node returns the node at index i.
func (t *Tape[T]) Node(i int) *Node[T] { return t.nodes[i] }

func (t *Tape[T]) appendInput(rows, cols int, trainable bool) int {
	idx := len(t.nodes)
	n := &Node[T]{Kind: Input, Rows: rows, Cols: cols, Trainable: trainable, ParamSlot: -1}
	if trainable {
		n.ParamSlot = len(t.paramSlots)
		t.paramSlots = append(t.paramSlots, idx)
	}
	t.nodes = append(t.nodes, n)
	return idx
}

// registerParamTensor records the pointer Reset must patch when this
// parameter's tape index moves.
func (t *Tape[T]) registerParamTensor(tensor *Tensor[T]) {
	t.paramTensors = append(t.paramTensors, tensor)
}

// appendDerived pushes a derived (non-Input) node. Any kind other than
// ElementWise clears elementWiseOnly for the whole tape.
func (t *Tape[T]) appendDerived(n *Node[T]) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, n)
	if n.Kind != ElementWise {
		t.elementWiseOnly = false
	}
	return idx
}

// SetTrainable toggles the trainable flag of the Input node named by
// tensor.Index. No-op if that node is not an Input.
func (t *Tape[T]) SetTrainable(tensor *Tensor[T], on bool) {
	n := t.nodes[tensor.Index]
	if n.Kind != Input {
		return
	}
	if n.Trainable == on {
		return
	}
	n.Trainable = on
	if on {
		n.ParamSlot = len(t.paramSlots)
		t.paramSlots = append(t.paramSlots, tensor.Index)
		t.registerParamTensor(tensor)
	} else {
		t.removeParamSlot(n.ParamSlot)
		n.ParamSlot = -1
	}
}

func (t *Tape[T]) removeParamSlot(slot int) {
	t.paramSlots = append(t.paramSlots[:slot], t.paramSlots[slot+1:]...)
	t.paramTensors = append(t.paramTensors[:slot], t.paramTensors[slot+1:]...)
	for i := slot; i < len(t.paramSlots); i++ {
		t.nodes[t.paramSlots[i]].ParamSlot = i
	}
}

// Reset retains only trainable Input nodes, compacting their indices to
// 0..k-1 in their original relative order, and patches every registered
// parameter Tensor's Index field to match. It returns the new length.
func (t *Tape[T]) Reset() int {
	kept := make([]*Node[T], 0, len(t.paramSlots))
	keptTensors := make([]*Tensor[T], 0, len(t.paramSlots))

	for slot, oldIdx := range t.paramSlots {
		n := t.nodes[oldIdx]
		n.ParamSlot = slot
		kept = append(kept, n)
		keptTensors = append(keptTensors, t.paramTensors[slot])
	}

	for slot, tensor := range keptTensors {
		tensor.Index = slot
		t.paramSlots[slot] = slot
	}

	t.nodes = kept
	t.paramTensors = keptTensors
	t.elementWiseOnly = true
	return len(t.nodes)
}
