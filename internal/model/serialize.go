package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aldenrapp/tapegrad/internal/array"
	"github.com/aldenrapp/tapegrad/internal/tape"
)

// ErrIOFailure mirrors tape's IOFailure sentinel for save/load callers
// that never otherwise touch the tape package.
var ErrIOFailure = tape.ErrIOFailure

func writeTensor[T array.Float](w *bufio.Writer, a *array.Array[T]) error {
	if _, err := fmt.Fprintln(w, a.Rows()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, a.Cols()); err != nil {
		return err
	}
	values := a.RowMajor()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 64)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, ","))
	return err
}

func readLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: unexpected end of file", ErrIOFailure)
	}
	return sc.Text(), nil
}

func readInt(sc *bufio.Scanner) (int, error) {
	line, err := readLine(sc)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return n, nil
}

func readTensor[T array.Float](sc *bufio.Scanner) (*array.Array[T], error) {
	rows, err := readInt(sc)
	if err != nil {
		return nil, err
	}
	cols, err := readInt(sc)
	if err != nil {
		return nil, err
	}
	line, err := readLine(sc)
	if err != nil {
		return nil, err
	}
	out := array.New[T](rows, cols)
	if rows*cols == 0 {
		return out, nil
	}
	fields := strings.Split(line, ",")
	if len(fields) != rows*cols {
		return nil, fmt.Errorf("%w: tensor expects %d values, found %d", ErrIOFailure, rows*cols, len(fields))
	}
	data := make([]T, rows*cols)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		data[i] = T(v)
	}
	return array.FromRowMajor[T](rows, cols, data), nil
}

func writeTensorVector[T array.Float](w *bufio.Writer, ts []*array.Array[T]) error {
	if _, err := fmt.Fprintln(w, len(ts)); err != nil {
		return err
	}
	for _, t := range ts {
		if err := writeTensor(w, t); err != nil {
			return err
		}
	}
	return nil
}

func readTensorVector[T array.Float](sc *bufio.Scanner) ([]*array.Array[T], error) {
	n, err := readInt(sc)
	if err != nil {
		return nil, err
	}
	out := make([]*array.Array[T], n)
	for i := range out {
		t, err := readTensor[T](sc)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func write2DUnsignedVector(w *bufio.Writer, vec [][]int) error {
	if _, err := fmt.Fprintln(w, len(vec)); err != nil {
		return err
	}
	for _, inner := range vec {
		if _, err := fmt.Fprintln(w, len(inner)); err != nil {
			return err
		}
		for _, v := range inner {
			if _, err := fmt.Fprintln(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func read2DUnsignedVector(sc *bufio.Scanner) ([][]int, error) {
	n, err := readInt(sc)
	if err != nil {
		return nil, err
	}
	out := make([][]int, n)
	for i := range out {
		count, err := readInt(sc)
		if err != nil {
			return nil, err
		}
		inner := make([]int, count)
		for j := range inner {
			v, err := readInt(sc)
			if err != nil {
				return nil, err
			}
			inner[j] = v
		}
		out[i] = inner
	}
	return out, nil
}

func valuesOf[T array.Float](ts []*tape.Tensor[T]) []*array.Array[T] {
	out := make([]*array.Array[T], len(ts))
	for i, t := range ts {
		out[i] = t.Value
	}
	return out
}

// Save writes the weight and bias vectors to path: weights_vector then
// biases_vector, per the MLP file format.
func (m *MLP[T]) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeTensorVector(w, valuesOf(m.weights)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeTensorVector(w, valuesOf(m.biases)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// LoadMLP reads a file written by Save and rebuilds a trainable MLP with
// the given activation (the file format carries no activation tag).
func LoadMLP[T array.Float](path string, activation Activation) (*MLP[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	weights, err := readTensorVector[T](sc)
	if err != nil {
		return nil, err
	}
	biases, err := readTensorVector[T](sc)
	if err != nil {
		return nil, err
	}
	if len(weights) != len(biases) || len(weights) == 0 {
		return nil, fmt.Errorf("%w: mismatched weight/bias layer count", ErrIOFailure)
	}

	t := tape.New[T]()
	m := &MLP[T]{t: t, activation: activation}
	for i := range weights {
		m.weights = append(m.weights, tape.Parameter(t, weights[i]))
		m.biases = append(m.biases, tape.Parameter(t, biases[i]))
	}
	return m, nil
}

// kernelBlock slices the (outChannel, inChannel) kernel out of a conv
// layer's combined weight parameter.
func kernelBlock[T array.Float](weight *array.Array[T], outChannel, inChannel, kr, kc int) *array.Array[T] {
	row := weight.Block(outChannel, inChannel*kr*kc, 1, kr*kc)
	return row.Reshape(kr, kc)
}

// setKernelBlock writes a kr x kc kernel into its (outChannel, inChannel)
// slot of a combined conv layer weight parameter.
func setKernelBlock[T array.Float](weight *array.Array[T], outChannel, inChannel, kr, kc int, kernel *array.Array[T]) {
	weight.SetBlock(outChannel, inChannel*kr*kc, kernel.Reshape(1, kr*kc))
}

// Save writes a CNN file: split direction, input channel count, the
// pooling/kernel-dims/output-dims 2D unsigned vectors, then conv
// kernels, conv biases (always empty; this architecture carries no
// convolution bias), dense weights and dense biases, each as a tensor
// vector. kernelDims stores per-layer (kernelRows, kernelCols,
// outChannels) triples rather than original_source's per-channel nested
// layout, so the flat conv-kernel tensor vector can be replayed
// layer-by-layer on load without needing that nesting.
func (m *CNN[T]) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := fmt.Fprintln(w, int(m.splitDirection)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if _, err := fmt.Fprintln(w, m.inputChannels); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	pooling := make([][]int, len(m.convLayers))
	kernelDims := make([][]int, len(m.convLayers))
	outputDims := make([][]int, len(m.convLayers))

	rows, cols := m.inputRows, m.inputCols
	switch m.splitDirection {
	case tape.SplitHorizontal:
		rows /= m.inputChannels
	case tape.SplitVertical:
		cols /= m.inputChannels
	}

	var kernels []*array.Array[T]
	inChannels := m.inputChannels
	for i, layer := range m.convLayers {
		pooling[i] = []int{layer.PoolRows, layer.PoolCols}
		kernelDims[i] = []int{layer.KernelRows, layer.KernelCols, layer.OutChannels}

		rows = rows - layer.KernelRows + 1
		cols = cols - layer.KernelCols + 1
		if layer.PoolRows != 0 || layer.PoolCols != 0 {
			rows /= layer.PoolRows
			cols /= layer.PoolCols
		}
		outputDims[i] = []int{rows, cols}

		weight := m.convWeights[i].Value
		for oc := 0; oc < layer.OutChannels; oc++ {
			for ic := 0; ic < inChannels; ic++ {
				kernels = append(kernels, kernelBlock(weight, oc, ic, layer.KernelRows, layer.KernelCols))
			}
		}
		inChannels = layer.OutChannels
	}

	if err := write2DUnsignedVector(w, pooling); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := write2DUnsignedVector(w, kernelDims); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := write2DUnsignedVector(w, outputDims); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeTensorVector(w, kernels); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeTensorVector[T](w, nil); err != nil { // conv biases: always empty
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeTensorVector(w, valuesOf(m.denseWeights)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeTensorVector(w, valuesOf(m.denseBiases)); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// LoadCNN reads a file written by Save and rebuilds a trainable CNN with
// the given activation.
func LoadCNN[T array.Float](path string, inputRows, inputCols int, activation Activation) (*CNN[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	direction, err := readInt(sc)
	if err != nil {
		return nil, err
	}
	inputChannels, err := readInt(sc)
	if err != nil {
		return nil, err
	}
	pooling, err := read2DUnsignedVector(sc)
	if err != nil {
		return nil, err
	}
	kernelDims, err := read2DUnsignedVector(sc)
	if err != nil {
		return nil, err
	}
	if _, err := read2DUnsignedVector(sc); err != nil { // output dims, recomputed rather than trusted
		return nil, err
	}
	kernels, err := readTensorVector[T](sc)
	if err != nil {
		return nil, err
	}
	if _, err := readTensorVector[T](sc); err != nil { // conv biases, always empty
		return nil, err
	}
	denseWeightVals, err := readTensorVector[T](sc)
	if err != nil {
		return nil, err
	}
	denseBiasVals, err := readTensorVector[T](sc)
	if err != nil {
		return nil, err
	}
	if len(pooling) != len(kernelDims) {
		return nil, fmt.Errorf("%w: pooling/kernel-dims layer count mismatch", ErrIOFailure)
	}

	convLayers := make([]ConvLayerConfig, len(kernelDims))
	for i, dims := range kernelDims {
		if len(dims) != 3 || len(pooling[i]) != 2 {
			return nil, fmt.Errorf("%w: malformed conv layer descriptor", ErrIOFailure)
		}
		convLayers[i] = ConvLayerConfig{
			KernelRows: dims[0], KernelCols: dims[1], OutChannels: dims[2],
			PoolRows: pooling[i][0], PoolCols: pooling[i][1],
		}
	}

	t := tape.New[T]()
	m := &CNN[T]{
		t: t, activation: activation,
		inputRows: inputRows, inputCols: inputCols,
		splitDirection: tape.SplitDirection(direction), inputChannels: inputChannels,
		convLayers: convLayers,
	}

	inChannels := inputChannels
	pos := 0
	for _, layer := range convLayers {
		weight := array.New[T](layer.OutChannels, inChannels*layer.KernelRows*layer.KernelCols)
		for oc := 0; oc < layer.OutChannels; oc++ {
			for ic := 0; ic < inChannels; ic++ {
				if pos >= len(kernels) {
					return nil, fmt.Errorf("%w: conv kernel vector too short", ErrIOFailure)
				}
				setKernelBlock(weight, oc, ic, layer.KernelRows, layer.KernelCols, kernels[pos])
				pos++
			}
		}
		m.convWeights = append(m.convWeights, tape.Parameter(t, weight))
		inChannels = layer.OutChannels
	}

	if len(denseWeightVals) != len(denseBiasVals) {
		return nil, fmt.Errorf("%w: mismatched dense weight/bias layer count", ErrIOFailure)
	}
	for i := range denseWeightVals {
		m.denseWeights = append(m.denseWeights, tape.Parameter(t, denseWeightVals[i]))
		m.denseBiases = append(m.denseBiases, tape.Parameter(t, denseBiasVals[i]))
	}
	return m, nil
}
