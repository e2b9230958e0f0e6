package tape

import "github.com/aldenrapp/tapegrad/internal/array"

func appendElementWise[T array.Float](t *Tape[T], value *array.Array[T], parents []int, local ...*array.Array[T]) *Tensor[T] {
	idx := t.appendDerived(&Node[T]{
		Kind:    ElementWise,
		Rows:    value.Rows(),
		Cols:    value.Cols(),
		Parents: parents,
		Local:   local,
	})
	return &Tensor[T]{Value: value, Tape: t, Index: idx}
}

func binaryElementWise[T array.Float](x, y *Tensor[T], compute func(a, b *array.Array[T]) *array.Array[T], localX, localY func(a, b *array.Array[T]) *array.Array[T]) *Tensor[T] {
	if !checkSameTape(x, y) {
		return emptyTensor[T]()
	}
	if !x.Value.SameShape(y.Value) {
		return emptyTensor[T]()
	}
	out := compute(x.Value, y.Value)
	if out.IsEmpty() {
		return emptyTensor[T]()
	}
	return appendElementWise(x.Tape, out, []int{x.Index, y.Index}, localX(x.Value, y.Value), localY(x.Value, y.Value))
}

// Add returns x + y.
func Add[T array.Float](x, y *Tensor[T]) *Tensor[T] {
	return binaryElementWise(x, y,
		func(a, b *array.Array[T]) *array.Array[T] { return a.Add(b) },
		func(a, b *array.Array[T]) *array.Array[T] { return ones[T](a.Rows(), a.Cols()) },
		func(a, b *array.Array[T]) *array.Array[T] { return ones[T](b.Rows(), b.Cols()) },
	)
}

// Sub returns x - y.
func Sub[T array.Float](x, y *Tensor[T]) *Tensor[T] {
	return binaryElementWise(x, y,
		func(a, b *array.Array[T]) *array.Array[T] { return a.Sub(b) },
		func(a, b *array.Array[T]) *array.Array[T] { return ones[T](a.Rows(), a.Cols()) },
		func(a, b *array.Array[T]) *array.Array[T] { return negOnes[T](b.Rows(), b.Cols()) },
	)
}

// Mul returns the coefficient-wise product x * y.
func Mul[T array.Float](x, y *Tensor[T]) *Tensor[T] {
	return binaryElementWise(x, y,
		func(a, b *array.Array[T]) *array.Array[T] { return a.Mul(b) },
		func(a, b *array.Array[T]) *array.Array[T] { return b.Clone() },
		func(a, b *array.Array[T]) *array.Array[T] { return a.Clone() },
	)
}

// Div returns the coefficient-wise quotient x / y. Division by zero
// follows T's floating-point rules; it is not guarded.
func Div[T array.Float](x, y *Tensor[T]) *Tensor[T] {
	return binaryElementWise(x, y,
		func(a, b *array.Array[T]) *array.Array[T] { return a.Div(b) },
		func(a, b *array.Array[T]) *array.Array[T] { return reciprocal(b) },
		func(a, b *array.Array[T]) *array.Array[T] { return negXOverYSquared(a, b) },
	)
}

func unaryElementWise[T array.Float](x *Tensor[T], compute func(*array.Array[T]) *array.Array[T], local func(*array.Array[T]) *array.Array[T]) *Tensor[T] {
	if x.Tape == nil {
		return emptyTensor[T]()
	}
	out := compute(x.Value)
	return appendElementWise(x.Tape, out, []int{x.Index}, local(x.Value))
}

// Sigmoid returns the logistic sigmoid of x, applied coefficient-wise.
func Sigmoid[T array.Float](x *Tensor[T]) *Tensor[T] {
	return unaryElementWise(x,
		func(a *array.Array[T]) *array.Array[T] { return sigmoidValue(a) },
		func(a *array.Array[T]) *array.Array[T] { return sigmoidLocal(a) },
	)
}

func sigmoidValue[T array.Float](x *array.Array[T]) *array.Array[T] {
	ex := x.Exp()
	denom := ex.AddScalar(1)
	return ex.Div(denom)
}

func sigmoidLocal[T array.Float](x *array.Array[T]) *array.Array[T] {
	ex := x.Exp()
	denom := ex.AddScalar(1)
	denomSq := denom.Mul(denom)
	return ex.Div(denomSq)
}

// ReLU returns max(0, x) coefficient-wise; local derivative is 1 where
// x > 0, else 0.
func ReLU[T array.Float](x *Tensor[T]) *Tensor[T] {
	return unaryElementWise(x,
		func(a *array.Array[T]) *array.Array[T] { return reluValue(a, 0) },
		func(a *array.Array[T]) *array.Array[T] { return reluLocal(a, 0) },
	)
}

// LeakyReLU returns x above zero and 0.1*x below, with matching local
// derivative (1 above, 0.1 below).
func LeakyReLU[T array.Float](x *Tensor[T]) *Tensor[T] {
	return unaryElementWise(x,
		func(a *array.Array[T]) *array.Array[T] { return reluValue(a, 0.1) },
		func(a *array.Array[T]) *array.Array[T] { return reluLocal(a, 0.1) },
	)
}

func reluValue[T array.Float](x *array.Array[T], slope T) *array.Array[T] {
	out := array.New[T](x.Rows(), x.Cols())
	for i := 0; i < x.Rows(); i++ {
		for j := 0; j < x.Cols(); j++ {
			v := x.At(i, j)
			if v > 0 {
				out.Set(i, j, v)
			} else {
				out.Set(i, j, v*slope)
			}
		}
	}
	return out
}

func reluLocal[T array.Float](x *array.Array[T], slope T) *array.Array[T] {
	out := array.New[T](x.Rows(), x.Cols())
	for i := 0; i < x.Rows(); i++ {
		for j := 0; j < x.Cols(); j++ {
			if x.At(i, j) > 0 {
				out.Set(i, j, 1)
			} else {
				out.Set(i, j, slope)
			}
		}
	}
	return out
}

// Rescale returns x / max(x). Its local derivative is stored as max(x)
// rather than 1/max(x), preserving a behavior original_source's
// optimizer never corrected; see DESIGN.md.
func Rescale[T array.Float](x *Tensor[T]) *Tensor[T] {
	return unaryElementWise(x,
		func(a *array.Array[T]) *array.Array[T] { return a.Scale(1 / a.Max()) },
		func(a *array.Array[T]) *array.Array[T] { return filled(a.Rows(), a.Cols(), a.Max()) },
	)
}

func ones[T array.Float](rows, cols int) *array.Array[T] {
	return filled(rows, cols, 1)
}

func negOnes[T array.Float](rows, cols int) *array.Array[T] {
	return filled(rows, cols, -1)
}

func filled[T array.Float](rows, cols int, v T) *array.Array[T] {
	out := array.New[T](rows, cols)
	out.Fill(v)
	return out
}

func reciprocal[T array.Float](a *array.Array[T]) *array.Array[T] {
	return ones[T](a.Rows(), a.Cols()).Div(a)
}

func negXOverYSquared[T array.Float](x, y *array.Array[T]) *array.Array[T] {
	ySquared := y.Mul(y)
	return negOnes[T](x.Rows(), x.Cols()).Mul(x).Div(ySquared)
}

// elementWisePullback returns L[p] * g, coefficient-wise.
func elementWisePullback[T array.Float](n *Node[T], g *array.Array[T], p int) *array.Array[T] {
	return n.Local[p].Mul(g)
}
