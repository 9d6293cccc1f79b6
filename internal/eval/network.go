package eval

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"
)

// Network architecture constants.
const (
	InputSize   = FeatureSize
	Hidden1Size = 128
	Hidden2Size = 64
	OutputSize  = 3 // loss, tie, win
)

// Network is the 42-128-64-3 multilayer perceptron the original program was
// trained with: two ReLU hidden layers and a softmax over (loss, tie, win).
// Weights are read-only after loading, so one Network may serve any number
// of concurrent searches.
type Network struct {
	W1 *mat.Dense    // Hidden1Size x InputSize
	B1 *mat.VecDense // Hidden1Size
	W2 *mat.Dense    // Hidden2Size x Hidden1Size
	B2 *mat.VecDense // Hidden2Size
	W3 *mat.Dense    // OutputSize x Hidden2Size
	B3 *mat.VecDense // OutputSize

	fingerprint uint64
}

// NewNetwork creates a network with all weights zero.
func NewNetwork() *Network {
	n := &Network{
		W1: mat.NewDense(Hidden1Size, InputSize, nil),
		B1: mat.NewVecDense(Hidden1Size, nil),
		W2: mat.NewDense(Hidden2Size, Hidden1Size, nil),
		B2: mat.NewVecDense(Hidden2Size, nil),
		W3: mat.NewDense(OutputSize, Hidden2Size, nil),
		B3: mat.NewVecDense(OutputSize, nil),
	}
	n.updateFingerprint()
	return n
}

// InitRandom fills the weights with small reproducible values. Useful for
// tests and benchmarks when no trained model is at hand.
func (n *Network) InitRandom(seed int64) {
	// Simple LCG for reproducibility
	state := uint64(seed)
	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		// [-0.5, 0.5) scaled down
		return (float64(state>>11)/float64(1<<53) - 0.5) * 0.2
	}

	for _, p := range n.params() {
		for i := range p.data {
			p.data[i] = next()
		}
	}
	n.updateFingerprint()
}

// Forward runs the network and returns the raw output logits.
func (n *Network) Forward(features []float64) ([]float64, error) {
	if len(features) != InputSize {
		return nil, fmt.Errorf("expected %d features, got %d", InputSize, len(features))
	}

	// Copy so the caller's slice is never aliased by gonum.
	x := mat.NewVecDense(InputSize, append([]float64(nil), features...))

	h1 := mat.NewVecDense(Hidden1Size, nil)
	h1.MulVec(n.W1, x)
	h1.AddVec(h1, n.B1)
	relu(h1)

	h2 := mat.NewVecDense(Hidden2Size, nil)
	h2.MulVec(n.W2, h1)
	h2.AddVec(h2, n.B2)
	relu(h2)

	out := mat.NewVecDense(OutputSize, nil)
	out.MulVec(n.W3, h2)
	out.AddVec(out, n.B3)

	return mat.Col(nil, 0, out), nil
}

// Evaluate implements Evaluator.
func (n *Network) Evaluate(features []float64) Outcome {
	logits, err := n.Forward(features)
	if err != nil {
		return Neutral
	}
	return softmax(logits)
}

// Fingerprint identifies the weights. Cached search results are keyed by it
// so a different model never reuses them.
func (n *Network) Fingerprint() uint64 {
	return n.fingerprint
}

func (n *Network) updateFingerprint() {
	d := xxhash.New()
	// Digest writes never fail.
	_ = n.writeBody(d)
	n.fingerprint = d.Sum64()
}

func relu(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < 0 {
			v.SetVec(i, 0)
		}
	}
}
