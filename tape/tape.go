// Package tape is the public reverse-mode automatic differentiation
// engine: a Wengert list of typed operation nodes, the forward operators
// that populate it, and the reverse pass that walks it to compute
// gradients.
//
// Example:
//
//	t := tape.New[float64]()
//	x := tape.Parameter(t, array.FromRowMajor[float64](1, 1, []float64{3}))
//	y := tape.Add(tape.Mul(x, x), x)
//	g := tape.Grad(y)
//	dydx := g.Get(x)
package tape

import (
	"github.com/aldenrapp/tapegrad/internal/array"
	itape "github.com/aldenrapp/tapegrad/internal/tape"
)

// NodeKind tags the operation a Node records.
type NodeKind = itape.NodeKind

// SplitDirection selects how Split partitions its input.
type SplitDirection = itape.SplitDirection

const (
	NoSplit         = itape.NoSplit
	SplitHorizontal = itape.SplitHorizontal
	SplitVertical   = itape.SplitVertical
)

// Tape is the append-only Wengert list.
type Tape[T array.Float] = itape.Tape[T]

// Tensor binds a value array to a position on a Tape.
type Tensor[T array.Float] = itape.Tensor[T]

// Gradient is a vector of arrays indexed by tape position.
type Gradient[T array.Float] = itape.Gradient[T]

// Node is one tape entry, exposed for callers that walk a tape directly
// (e.g. Adam sizing its per-node moment estimates).
type Node[T array.Float] = itape.Node[T]

// GradAccumSlot is one parameter's running gradient sum across a batch.
type GradAccumSlot[T array.Float] = itape.GradAccumSlot[T]

// GradAccumulator sums per-parameter gradients across a mini-batch.
type GradAccumulator[T array.Float] = itape.GradAccumulator[T]

// New returns an empty tape.
func New[T array.Float]() *Tape[T] { return itape.New[T]() }

// Input creates a non-trainable Tensor bound to a fresh Input node.
func Input[T array.Float](t *Tape[T], value *array.Array[T]) *Tensor[T] {
	return itape.Input(t, value)
}

// Parameter creates a trainable Tensor bound to an Input node that
// survives every Reset.
func Parameter[T array.Float](t *Tape[T], value *array.Array[T]) *Tensor[T] {
	return itape.Parameter(t, value)
}

// Add returns x + y.
func Add[T array.Float](x, y *Tensor[T]) *Tensor[T] { return itape.Add(x, y) }

// Sub returns x - y.
func Sub[T array.Float](x, y *Tensor[T]) *Tensor[T] { return itape.Sub(x, y) }

// Mul returns the coefficient-wise product x * y.
func Mul[T array.Float](x, y *Tensor[T]) *Tensor[T] { return itape.Mul(x, y) }

// Div returns the coefficient-wise quotient x / y.
func Div[T array.Float](x, y *Tensor[T]) *Tensor[T] { return itape.Div(x, y) }

// Sigmoid returns the logistic sigmoid of x, coefficient-wise.
func Sigmoid[T array.Float](x *Tensor[T]) *Tensor[T] { return itape.Sigmoid(x) }

// ReLU returns max(0, x), coefficient-wise.
func ReLU[T array.Float](x *Tensor[T]) *Tensor[T] { return itape.ReLU(x) }

// LeakyReLU returns x above zero and 0.1*x below.
func LeakyReLU[T array.Float](x *Tensor[T]) *Tensor[T] { return itape.LeakyReLU(x) }

// Rescale returns x / max(x).
func Rescale[T array.Float](x *Tensor[T]) *Tensor[T] { return itape.Rescale(x) }

// MatProd returns the matrix product x*y.
func MatProd[T array.Float](x, y *Tensor[T]) *Tensor[T] { return itape.MatProd(x, y) }

// SquaredNorm returns the (1,1) Frobenius squared norm of x.
func SquaredNorm[T array.Float](x *Tensor[T]) *Tensor[T] { return itape.SquaredNorm(x) }

// Convolution computes the legacy direct valid cross-correlation of mat
// with ker. Prefer Im2Col plus MatProd in new code.
func Convolution[T array.Float](mat, ker *Tensor[T]) *Tensor[T] { return itape.Convolution(mat, ker) }

// MaxPooling downsamples x by taking the max of each non-overlapping
// (pr,pc) window.
func MaxPooling[T array.Float](x *Tensor[T], pr, pc int) *Tensor[T] {
	return itape.MaxPooling(x, pr, pc)
}

// Split partitions x into numChannels equal slabs along direction.
func Split[T array.Float](x *Tensor[T], direction SplitDirection, numChannels int) []*Tensor[T] {
	return itape.Split(x, direction, numChannels)
}

// VertCat stacks xs vertically.
func VertCat[T array.Float](xs []*Tensor[T]) *Tensor[T] { return itape.VertCat(xs) }

// Flatten reshapes x, row-major, from (r,c) to (r*c, 1).
func Flatten[T array.Float](x *Tensor[T]) *Tensor[T] { return itape.Flatten(x) }

// Im2Col lowers numChannels equal-shaped input channels into a single
// column matrix suitable for convolution-as-matmul.
func Im2Col[T array.Float](xs []*Tensor[T], kr, kc int) *Tensor[T] { return itape.Im2Col(xs, kr, kc) }

// Col2Im lifts each row of m into its own (outRows, outCols) channel.
func Col2Im[T array.Float](m *Tensor[T], outRows, outCols int) []*Tensor[T] {
	return itape.Col2Im(m, outRows, outCols)
}

// Grad runs the reverse pass seeded at seed.
func Grad[T array.Float](seed *Tensor[T]) Gradient[T] { return itape.Grad(seed) }

// NewGradAccumulator resets t, then binds one slot per trainable
// parameter remaining on the tape.
func NewGradAccumulator[T array.Float](t *Tape[T]) *GradAccumulator[T] {
	return itape.NewGradAccumulator(t)
}
