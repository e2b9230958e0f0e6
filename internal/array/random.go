package array

import "math/rand"

// Random returns a rows x cols array filled with values uniformly drawn
// from [-1, 1), matching original_source's Eigen::setRandom-driven
// initialization of weights, biases and kernels (see DESIGN.md).
func Random[T Float](rows, cols int, rng *rand.Rand) *Array[T] {
	out := New[T](rows, cols)
	for i := range out.data {
		out.data[i] = T(rng.Float64()*2 - 1)
	}
	return out
}
