// Package tape implements the reverse-mode automatic differentiation
// engine: an append-only log of typed operation nodes (the Wengert list),
// the forward operators that populate it, and the backward pass that
// walks it to compute gradients.
//
// Node is a closed tagged variant rather than a set of types behind a
// common interface: NodeKind selects which payload fields are populated,
// and the backward pass is a single switch over Kind instead of a vtable
// dispatch through per-operation types. See DESIGN.md for why this
// diverges from the teacher's per-operation-struct design.
package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// NodeKind tags the operation a Node records.
type NodeKind int

const (
	// Input marks a tape entry with no parents: either a trainable
	// parameter or a fresh per-sample value.
	Input NodeKind = iota
	// ElementWise marks a coefficient-wise unary or binary operator.
	ElementWise
	// MatProd marks a matrix product.
	MatProd
	// Scalar marks an operator producing a 1x1 output from an array
	// input (squared norm).
	Scalar
	// Convolution marks the legacy direct 2D convolution operator.
	Convolution
	// Pooling marks a max-pooling operator.
	Pooling
	// Split marks one output channel of a channel split.
	Split
	// VertCat marks a vertical concatenation of several matrices.
	VertCat
	// Flatten marks a row-major reshape to a column vector.
	Flatten
	// Im2Col marks the column-matrix lowering of all convolution input
	// channels into one matrix.
	Im2Col
	// Col2Im marks the lifting of one im2col row back to a 2D channel.
	Col2Im
)

// SplitDirection selects how Split partitions its input.
type SplitDirection int

const (
	// NoSplit returns the input unchanged as a single channel.
	NoSplit SplitDirection = iota
	// SplitHorizontal partitions rows into equal slabs.
	SplitHorizontal
	// SplitVertical partitions columns into equal slabs.
	SplitVertical
)

// MatProdPayload records the operand shapes of a MatProd node. The
// pullback tells X from Y by parent slot (0 for X, 1 for Y) and does not
// read these shapes.
type MatProdPayload struct {
	XRows, XCols int
	YRows, YCols int
}

// PoolingPayload records the pool window size of a Pooling node. The
// argmax mask is carried in Node.Local[0], shaped like the input.
type PoolingPayload struct {
	PoolRows, PoolCols int
}

// SplitPayload records which channel of an original matrix this Split
// node represents.
type SplitPayload struct {
	Direction        SplitDirection
	Channel          int
	OrigRows         int
	OrigCols         int
}

// VertCatPayload records the cumulative row offset of each parent within
// the concatenated output; length is len(Parents)+1.
type VertCatPayload struct {
	Offsets []int
}

// Im2ColPayload records the window and channel geometry of an Im2Col
// node. One node covers all input channels; Node.Parents[p] identifies
// which channel a given pullback slot belongs to.
type Im2ColPayload struct {
	KernelRows, KernelCols int
	ChanRows, ChanCols     int
	NumChannels            int
}

// Col2ImPayload records which im2col row this Col2Im node lifts, and the
// output channel shape.
type Col2ImPayload struct {
	Row               int
	OutRows, OutCols  int
	KernelRows, KernelCols int
}

// ConvPayload records the kernel extents of a legacy Convolution node,
// which set the zero padding of the gradient in the matrix-operand
// pullback. The kernel itself is kept in Node.Local[1] and is rotated
// by the pullback.
type ConvPayload struct {
	KernelRows, KernelCols int
}

// Node is one entry of the tape: the shape it produced, its parents (by
// strictly smaller tape index, per the topological-sort invariant), and
// whatever per-kind payload its pullback needs.
type Node[T array.Float] struct {
	Kind NodeKind
	Rows int
	Cols int

	Parents []int
	Local   []*array.Array[T]

	// Input-only.
	Trainable bool
	ParamSlot int // -1 unless Trainable

	MatProd    *MatProdPayload
	Pooling    *PoolingPayload
	SplitInfo  *SplitPayload
	VertCatInfo *VertCatPayload
	Im2ColInfo *Im2ColPayload
	Col2ImInfo *Col2ImPayload
	ConvInfo   *ConvPayload
}
