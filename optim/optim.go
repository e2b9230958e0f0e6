// Package optim is the public optimizer surface: plain mini-batch
// gradient descent and Adam, both driving the same batches-of-samples
// training loop over a Model.
package optim

import (
	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/optim"
)

// Model is the surface a training Run needs from a trainable model.
type Model[T array.Float] = optim.Model[T]

// NormFn reduces a tensor to a scalar loss.
type NormFn[T array.Float] = optim.NormFn[T]

// Sample is one (input, expected) pair from a training batch.
type Sample[T array.Float] = optim.Sample[T]

// Losses is the [epoch][batch][sample] -> loss result of a Run.
type Losses[T array.Float] = optim.Losses[T]

// SGD implements plain mini-batch gradient descent.
type SGD[T array.Float] = optim.SGD[T]

// SGDConfig holds configuration for SGD.
type SGDConfig[T array.Float] = optim.SGDConfig[T]

// NewSGD creates an SGD optimizer.
func NewSGD[T array.Float](config SGDConfig[T]) *SGD[T] { return optim.NewSGD(config) }

// Adam implements Adaptive Moment Estimation.
type Adam[T array.Float] = optim.Adam[T]

// AdamConfig holds configuration for Adam.
type AdamConfig[T array.Float] = optim.AdamConfig[T]

// NewAdam creates an Adam optimizer.
func NewAdam[T array.Float](config AdamConfig[T]) *Adam[T] { return optim.NewAdam(config) }
