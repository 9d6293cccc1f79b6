package eval

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	deep "github.com/patrikeh/go-deep"
)

// DeepEvaluator wraps a network trained with go-deep. The model must take
// FeatureSize inputs and produce either three outputs (loss, tie, win) or a
// single score in [-1, 1].
type DeepEvaluator struct {
	mu          sync.Mutex // Predict writes neuron state
	net         *deep.Neural
	outputs     int
	fingerprint uint64
}

// LoadDeep reads a go-deep JSON dump from filename.
func LoadDeep(filename string) (*DeepEvaluator, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	net, err := deep.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	ev, err := NewDeep(net)
	if err != nil {
		return nil, err
	}
	ev.fingerprint = xxhash.Sum64(data)
	return ev, nil
}

// NewDeep wraps an in-memory go-deep network.
func NewDeep(net *deep.Neural) (*DeepEvaluator, error) {
	if net == nil || net.Config == nil {
		return nil, fmt.Errorf("model has no configuration")
	}
	if net.Config.Inputs != FeatureSize {
		return nil, fmt.Errorf("model expects %d inputs, need %d", net.Config.Inputs, FeatureSize)
	}
	layout := net.Config.Layout
	if len(layout) == 0 {
		return nil, fmt.Errorf("model has no layers")
	}
	outputs := layout[len(layout)-1]
	if outputs != 1 && outputs != OutputSize {
		return nil, fmt.Errorf("model has %d outputs, need 1 or %d", outputs, OutputSize)
	}

	ev := &DeepEvaluator{net: net, outputs: outputs}
	if dump, err := net.Marshal(); err == nil {
		ev.fingerprint = xxhash.Sum64(dump)
	}
	return ev, nil
}

// Evaluate implements Evaluator.
func (e *DeepEvaluator) Evaluate(features []float64) Outcome {
	if len(features) != FeatureSize {
		return Neutral
	}

	e.mu.Lock()
	out := e.net.Predict(features)
	e.mu.Unlock()

	if e.outputs == 1 {
		return fromScalar(out[0])
	}
	return fromProbabilities(out)
}

// Fingerprint identifies the loaded model.
func (e *DeepEvaluator) Fingerprint() uint64 {
	return e.fingerprint
}
