package array

import "gonum.org/v1/gonum/mat"

// MatMul returns the matrix product a * b. Requires a.Cols() == b.Rows();
// on mismatch returns the empty-array sentinel and appends no tape node
// (the tape layer is responsible for that half of the contract).
//
// The float64 instantiation is delegated to gonum.org/v1/gonum/mat, which
// has no float32 equivalent, so Array[float32] falls back to a plain
// triple loop. See DESIGN.md for why gonum was chosen here instead of a
// hand-rolled kernel.
func (a *Array[T]) MatMul(b *Array[T]) *Array[T] {
	if a.cols != b.rows {
		return Empty[T]()
	}
	if af, bf, ok := asFloat64Pair(a, b); ok {
		out := mat.NewDense(a.rows, b.cols, nil)
		out.Mul(af, bf)
		return fromGonum[T](out)
	}
	return matmulLoop(a, b)
}

func matmulLoop[T Float](a, b *Array[T]) *Array[T] {
	out := New[T](a.rows, b.cols)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			av := a.At(i, k)
			if av == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.Set(i, j, out.At(i, j)+av*b.At(k, j))
			}
		}
	}
	return out
}

// Transpose returns the transpose of a.
func (a *Array[T]) Transpose() *Array[T] {
	if af, ok := asFloat64(a); ok {
		var t mat.Dense
		t.CloneFrom(af.T())
		return fromGonum[T](&t)
	}
	out := New[T](a.cols, a.rows)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.Set(j, i, a.At(i, j))
		}
	}
	return out
}

// asFloat64 attempts a zero-copy-free type assertion to Array[float64],
// wrapping it as a gonum *mat.Dense. Returns ok == false for any other T.
func asFloat64[T Float](a *Array[T]) (*mat.Dense, bool) {
	af, ok := any(a).(*Array[float64])
	if !ok {
		return nil, false
	}
	return mat.NewDense(af.rows, af.cols, af.data), true
}

func asFloat64Pair[T Float](a, b *Array[T]) (*mat.Dense, *mat.Dense, bool) {
	am, ok := asFloat64(a)
	if !ok {
		return nil, nil, false
	}
	bm, ok := asFloat64(b)
	if !ok {
		return nil, nil, false
	}
	return am, bm, true
}

// fromGonum converts a *mat.Dense result back into Array[T]. Only ever
// called when T == float64 (asFloat64 gates every call site), so the
// type assertion in the return always succeeds.
func fromGonum[T Float](d *mat.Dense) *Array[T] {
	r, c := d.Dims()
	out := &Array[float64]{rows: r, cols: c, data: make([]float64, r*c)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.data[i*c+j] = d.At(i, j)
		}
	}
	return any(out).(*Array[T])
}
