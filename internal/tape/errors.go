package tape

import "errors"

// Sentinel errors naming the failure kinds of the core. Forward
// operators, grad() and the model constructors signal failure in-band
// (empty Tensor / empty Gradient / a model whose Valid() is false) and
// return none of these. ErrIOFailure is the only one returned anywhere:
// the model package's save/load functions wrap it, so callers can test
// for it with errors.Is.
var (
	// ErrShapeMismatch means operand shapes were incompatible for the
	// requested operator.
	ErrShapeMismatch = errors.New("tape: shape mismatch")
	// ErrTapeMismatch means operands were bound to different tapes.
	ErrTapeMismatch = errors.New("tape: operands belong to different tapes")
	// ErrNonScalarSeed means grad() was called with a non-scalar seed
	// on a tape containing a non-element-wise operation.
	ErrNonScalarSeed = errors.New("tape: non-scalar seed on non-element-wise graph")
	// ErrBadPoolDimensions means a pooling window does not evenly
	// divide its input, or has non-positive extents.
	ErrBadPoolDimensions = errors.New("tape: pool dimensions do not divide input")
	// ErrBadArgumentStructure means a model constructor received a
	// mis-arity configuration (mismatched layer lists, zero-width layer).
	ErrBadArgumentStructure = errors.New("tape: bad model argument structure")
	// ErrIOFailure means model save/load could not read or write the
	// chosen path.
	ErrIOFailure = errors.New("tape: model I/O failure")
)
