package array

import "math"

// Exp returns the coefficient-wise exponential of a.
func (a *Array[T]) Exp() *Array[T] {
	return a.mapf(func(x T) T { return T(math.Exp(float64(x))) })
}

// Pow returns the coefficient-wise power a^p.
func (a *Array[T]) Pow(p float64) *Array[T] {
	return a.mapf(func(x T) T { return T(math.Pow(float64(x), p)) })
}

func (a *Array[T]) mapf(f func(T) T) *Array[T] {
	out := New[T](a.rows, a.cols)
	for i, v := range a.data {
		out.data[i] = f(v)
	}
	return out
}
