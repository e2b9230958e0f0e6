// Package array is the public dense 2D array primitive: the ArrayOps
// external collaborator that the tape and its operators are built on.
//
// Example:
//
//	a := array.FromRowMajor[float64](2, 2, []float64{1, 2, 3, 4})
//	b := array.New[float64](2, 2)
//	c := a.MatMul(b)
package array

import (
	"math/rand"

	"github.com/aldenrapp/tapegrad/internal/array"
)

// Float is the set of scalar element types Array supports.
type Float = array.Float

// Array is a dense, row-major rows x cols matrix of T. A 0x0 shape
// denotes "absent" and is used as the in-band failure sentinel by the
// tape package.
type Array[T Float] = array.Array[T]

// New allocates a zero-filled rows x cols array.
func New[T Float](rows, cols int) *Array[T] { return array.New[T](rows, cols) }

// Empty returns the canonical 0x0 "absent" array.
func Empty[T Float]() *Array[T] { return array.Empty[T]() }

// FromRowMajor builds an array from an existing row-major slice.
func FromRowMajor[T Float](rows, cols int, data []T) *Array[T] {
	return array.FromRowMajor[T](rows, cols, data)
}

// Random returns a rows x cols array filled with values uniformly drawn
// from [-1, 1).
func Random[T Float](rows, cols int, rng *rand.Rand) *Array[T] {
	return array.Random[T](rows, cols, rng)
}
