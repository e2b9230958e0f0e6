package optim

import (
	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// SGD implements plain mini-batch gradient descent: delta = lr * sum / n.
// Momentum is not carried over from the teacher's optimizer (see
// DESIGN.md); original_source's GradientDescentOptimizer never modeled it
// either.
//
// Update rule:
//
//	param -= lr * accumulated_gradient / batch_size
type SGD[T array.Float] struct {
	lr     T
	epochs int
	normFn NormFn[T]
}

// SGDConfig holds configuration for SGD.
type SGDConfig[T array.Float] struct {
	LR     T // Learning rate (default: 0.01)
	Epochs int
	NormFn NormFn[T]
}

// NewSGD creates an SGD optimizer, filling zero-valued fields with
// defaults.
func NewSGD[T array.Float](config SGDConfig[T]) *SGD[T] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Epochs == 0 {
		config.Epochs = 1
	}
	if config.NormFn == nil {
		config.NormFn = defaultNormFn[T]()
	}
	return &SGD[T]{lr: config.LR, epochs: config.Epochs, normFn: config.NormFn}
}

// GetLR returns the current learning rate.
func (s *SGD[T]) GetLR() T { return s.lr }

// Run trains model over batches for the configured number of epochs,
// returning the per-sample loss values.
func (s *SGD[T]) Run(model Model[T], batches [][]Sample[T]) Losses[T] {
	noop := func(tape.Gradient[T], *tape.GradAccumulator[T]) {}
	return runLoop(model, batches, s.epochs, s.normFn, s.lr, noop, func() {})
}
