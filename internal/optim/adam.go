package optim

import (
	"math"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// Adam implements Adaptive Moment Estimation.
//
// Update rule, applied per parameter before the sample's gradient reaches
// the accumulator:
//
//	m = beta1*m + (1-beta1)*g
//	v = beta2*v + (1-beta2)*g^2
//	mHat = m / (1 - beta1^t)
//	vHat = v / (1 - beta2^t)
//	g' = mHat / (sqrt(vHat) + eps)
//
// t is the batch count, not the sample count: beta1^t and beta2^t decay
// once per batch. m and v are allocated once per Run, one entry per node
// on the tape when Run starts (indexed by tape position), and persist
// across the whole run; only entries at parameter indices are updated.
type Adam[T array.Float] struct {
	lr     T
	beta1  T
	beta2  T
	eps    T
	epochs int
	normFn NormFn[T]
}

// AdamConfig holds configuration for Adam. Defaults: LR 0.001,
// Beta1 0.9, Beta2 0.999, Eps 1e-8.
type AdamConfig[T array.Float] struct {
	LR     T
	Beta1  T
	Beta2  T
	Eps    T
	Epochs int
	NormFn NormFn[T]
}

// NewAdam creates an Adam optimizer, filling zero-valued fields with
// defaults.
func NewAdam[T array.Float](config AdamConfig[T]) *Adam[T] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	if config.Epochs == 0 {
		config.Epochs = 1
	}
	if config.NormFn == nil {
		config.NormFn = defaultNormFn[T]()
	}
	return &Adam[T]{
		lr: config.LR, beta1: config.Beta1, beta2: config.Beta2, eps: config.Eps,
		epochs: config.Epochs, normFn: config.NormFn,
	}
}

// GetLR returns the current learning rate.
func (a *Adam[T]) GetLR() T { return a.lr }

// Run trains model over batches for the configured number of epochs,
// returning the per-sample loss values.
func (a *Adam[T]) Run(model Model[T], batches [][]Sample[T]) Losses[T] {
	n := model.Tape().Len()
	m := make([]*array.Array[T], n)
	v := make([]*array.Array[T], n)
	for i := 0; i < n; i++ {
		node := model.Tape().Node(i)
		m[i] = array.New[T](node.Rows, node.Cols)
		v[i] = array.New[T](node.Rows, node.Cols)
	}

	beta1Pow, beta2Pow := a.beta1, a.beta2

	rewrite := func(g tape.Gradient[T], acc *tape.GradAccumulator[T]) {
		for _, slot := range acc.Slots {
			idx := slot.TapeIndex
			grad := g.At(idx)

			m[idx] = m[idx].Scale(a.beta1).Add(grad.Scale(1 - a.beta1))
			v[idx] = v[idx].Scale(a.beta2).Add(grad.Mul(grad).Scale(1 - a.beta2))

			mHat := m[idx].Scale(1 / (1 - beta1Pow))
			vHat := v[idx].Scale(1 / (1 - beta2Pow))
			g.Set(idx, mHat.Div(sqrtPlusEps(vHat, a.eps)))
		}
	}

	afterBatch := func() {
		beta1Pow *= a.beta1
		beta2Pow *= a.beta2
	}

	return runLoop(model, batches, a.epochs, a.normFn, a.lr, rewrite, afterBatch)
}

func sqrtPlusEps[T array.Float](x *array.Array[T], eps T) *array.Array[T] {
	out := array.New[T](x.Rows(), x.Cols())
	for i := 0; i < x.Rows(); i++ {
		for j := 0; j < x.Cols(); j++ {
			out.Set(i, j, T(math.Sqrt(float64(x.At(i, j))))+eps)
		}
	}
	return out
}
