// Package optim implements the optimization algorithms that mutate a
// model's trainable parameters from tape gradients: plain mini-batch
// gradient descent and Adam.
//
// Design mirrors the teacher's Config-struct-with-zero-value-defaults
// idiom and shared getGradient-style helpers, adapted to this project's
// tape/GradAccumulator plumbing instead of a RawTensor gradient map.
package optim

import (
	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// Model is the surface an Optimizer's Run loop needs from a trainable
// model: a forward pass over the model's own tape, and the ability to
// build fresh per-sample Inputs on that tape.
type Model[T array.Float] interface {
	Tape() *tape.Tape[T]
	Forward(input *tape.Tensor[T]) *tape.Tensor[T]
}

// NormFn reduces a tensor to a scalar loss; the default is SquaredNorm.
type NormFn[T array.Float] func(*tape.Tensor[T]) *tape.Tensor[T]

// Sample is one (input, expected) pair from a training batch.
type Sample[T array.Float] struct {
	Input    *array.Array[T]
	Expected *array.Array[T]
}

// Config is the base configuration shared by every optimizer.
type Config[T array.Float] struct {
	LR     T
	Epochs int
	NormFn NormFn[T]
}

func defaultNormFn[T array.Float]() NormFn[T] {
	return func(x *tape.Tensor[T]) *tape.Tensor[T] { return tape.SquaredNorm(x) }
}

// Losses is the [epoch][batch][sample] -> loss result of a Run.
type Losses[T array.Float] [][][]T

// runLoop is the training loop shared by SGD and Adam, grounded on
// original_source's GradientDescentOptimizer::run: epochs, then batches,
// then samples, building input/expected tensors, forward, norm, grad,
// accumulate, reset the tape per sample, apply per batch.
//
// rewriteGrad lets Adam rewrite the gradient vector at parameter indices
// with its bias-corrected step before the accumulator sees it; SGD passes
// a no-op. afterBatch lets Adam decay its beta powers once per batch.
func runLoop[T array.Float](
	model Model[T],
	batches [][]Sample[T],
	epochs int,
	normFn NormFn[T],
	lr T,
	rewriteGrad func(g tape.Gradient[T], acc *tape.GradAccumulator[T]),
	afterBatch func(),
) Losses[T] {
	if normFn == nil {
		normFn = defaultNormFn[T]()
	}

	acc := tape.NewGradAccumulator(model.Tape())
	losses := make(Losses[T], epochs)

	for e := 0; e < epochs; e++ {
		losses[e] = make([][]T, len(batches))
		for b, batch := range batches {
			sampleLosses := make([]T, len(batch))
			for s, sample := range batch {
				input := tape.Input(model.Tape(), sample.Input)
				expected := tape.Input(model.Tape(), sample.Expected)

				out := model.Forward(input)
				diff := tape.Sub(out, expected)
				loss := normFn(diff)

				g := tape.Grad(loss)
				rewriteGrad(g, acc)
				acc.Add(g)

				sampleLosses[s] = loss.Value.At(0, 0)
				model.Tape().Reset()
			}
			losses[e][b] = sampleLosses

			acc.Apply(func(slot *tape.GradAccumSlot[T]) {
				delta := slot.Sum.Scale(lr / T(len(batch)))
				slot.Tensor().Value = slot.Tensor().Value.Sub(delta)
			})
			acc.Reset()
			afterBatch()
		}
	}
	return losses
}
