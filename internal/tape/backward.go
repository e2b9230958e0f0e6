package tape

import "github.com/aldenrapp/tapegrad/internal/array"

// Gradient is a vector of Array(T) indexed by tape position, as returned
// by Grad. An empty Gradient (IsEmpty() == true) signals NonScalarSeed.
type Gradient[T array.Float] struct {
	values []*array.Array[T]
}

// IsEmpty reports whether this Gradient carries no values, i.e. Grad
// refused to run.
func (g Gradient[T]) IsEmpty() bool { return g.values == nil }

// Get returns the accumulated gradient at tensor's tape index.
func (g Gradient[T]) Get(tensor *Tensor[T]) *array.Array[T] {
	return g.values[tensor.Index]
}

// At returns the accumulated gradient at a raw tape index.
func (g Gradient[T]) At(i int) *array.Array[T] {
	return g.values[i]
}

// Set overwrites the gradient at a raw tape index. Used by Adam to
// rewrite a parameter's entry with its bias-corrected step before the
// accumulator sums it.
func (g Gradient[T]) Set(i int, v *array.Array[T]) {
	g.values[i] = v
}

// Len returns the number of entries, equal to the tape length at the
// moment Grad was called.
func (g Gradient[T]) Len() int { return len(g.values) }

// Grad runs the reverse pass seeded at seed, walking the tape from its
// last index down to 0. If the tape contains any non-element-wise node
// and seed's value is not a scalar (neither dimension equal to 1), it
// returns an empty Gradient instead of proceeding.
func Grad[T array.Float](seed *Tensor[T]) Gradient[T] {
	t := seed.Tape
	if t == nil {
		return Gradient[T]{}
	}
	if !t.elementWiseOnly && !isScalarShape(seed.Value) {
		return Gradient[T]{}
	}

	values := make([]*array.Array[T], len(t.nodes))
	for i, n := range t.nodes {
		values[i] = array.New[T](n.Rows, n.Cols)
	}
	values[seed.Index] = filled[T](seed.Value.Rows(), seed.Value.Cols(), 1)

	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		g := values[i]
		if g.IsEmpty() {
			continue
		}
		switch n.Kind {
		case Input:
			// No parents; nothing to propagate.
		case ElementWise:
			for p, parent := range n.Parents {
				accumulate(values, parent, elementWisePullback(n, g, p))
			}
		case MatProd:
			for p, parent := range n.Parents {
				accumulate(values, parent, matProdPullback(n, g, p))
			}
		case Scalar:
			accumulate(values, n.Parents[0], scalarPullback(n, g))
		case Convolution:
			for p, parent := range n.Parents {
				accumulate(values, parent, convolutionPullback(n, g, p))
			}
		case Pooling:
			accumulate(values, n.Parents[0], poolingPullback(n, g))
		case Split:
			accumulate(values, n.Parents[0], splitPullback(n, g))
		case VertCat:
			for p, parent := range n.Parents {
				accumulate(values, parent, vertCatPullback(n, g, p))
			}
		case Flatten:
			accumulate(values, n.Parents[0], flattenPullback(t, n, g))
		case Im2Col:
			for p, parent := range n.Parents {
				accumulate(values, parent, im2colPullback(n, g, p))
			}
		case Col2Im:
			accumulate(values, n.Parents[0], col2imPullback(t, n, g))
		}
	}

	return Gradient[T]{values: values}
}

func accumulate[T array.Float](values []*array.Array[T], idx int, delta *array.Array[T]) {
	values[idx] = values[idx].Add(delta)
}

func isScalarShape[T array.Float](a *array.Array[T]) bool {
	return a.Rows() == 1 || a.Cols() == 1
}
