// Command tapegrad demonstrates the tape-based training loop end to
// end: build an MLP, train it on XOR, save it, and reload it.
package main

import (
	"fmt"
	"math/rand"

	"github.com/aldenrapp/tapegrad/array"
	"github.com/aldenrapp/tapegrad/model"
	"github.com/aldenrapp/tapegrad/optim"
	"github.com/aldenrapp/tapegrad/tape"
)

func main() {
	fmt.Println("=== XOR training ===")

	rng := rand.New(rand.NewSource(42))
	net := model.NewMLP[float64](2, []int{3, 1}, model.ActivationSigmoid, rng)
	if !net.Valid() {
		fmt.Println("failed to construct model")
		return
	}

	inputs := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	expected := [][]float64{{0}, {1}, {1}, {0}}

	var samples []optim.Sample[float64]
	for i := range inputs {
		samples = append(samples, optim.Sample[float64]{
			Input:    array.FromRowMajor[float64](2, 1, inputs[i]),
			Expected: array.FromRowMajor[float64](1, 1, expected[i]),
		})
	}
	batches := [][]optim.Sample[float64]{samples}

	sgd := optim.NewSGD(optim.SGDConfig[float64]{LR: 0.5, Epochs: 5000})
	losses := sgd.Run(net, batches)
	last := losses[len(losses)-1][0]
	total := 0.0
	for _, l := range last {
		total += l
	}
	fmt.Printf("final average loss: %.6f\n", total/float64(len(last)))

	fmt.Println("\nPredictions:")
	for i := range inputs {
		in := tape.Input(net.Tape(), array.FromRowMajor[float64](2, 1, inputs[i]))
		out := net.Forward(in)
		fmt.Printf("input=%v predicted=%.4f target=%v\n", inputs[i], out.Value.At(0, 0), expected[i])
		net.Tape().Reset()
	}

	const path = "xor_mlp.txt"
	fmt.Printf("\nsaving to %s\n", path)
	if err := net.Save(path); err != nil {
		fmt.Printf("save failed: %v\n", err)
		return
	}

	reloaded, err := model.LoadMLP[float64](path, model.ActivationSigmoid)
	if err != nil {
		fmt.Printf("load failed: %v\n", err)
		return
	}
	in := tape.Input(reloaded.Tape(), array.FromRowMajor[float64](2, 1, inputs[0]))
	out := reloaded.Forward(in)
	fmt.Printf("reloaded model predicted=%.4f for input=%v\n", out.Value.At(0, 0), inputs[0])
}
