package eval

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/owulveryck/onnx-go"
	"github.com/owulveryck/onnx-go/backend/x/gorgonnx"
	"github.com/rs/zerolog/log"
	"gorgonia.org/tensor"
)

// ONNXEvaluator runs an exported model with a [1, FeatureSize] float32
// input and a three-way (loss, tie, win) output. The gorgonnx graph holds
// its input and output tensors, so runs are serialized.
type ONNXEvaluator struct {
	mu          sync.Mutex
	backend     *gorgonnx.Graph
	model       *onnx.Model
	fingerprint uint64
}

// LoadONNX reads an ONNX model from filename.
func LoadONNX(filename string) (*ONNXEvaluator, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return NewONNX(data)
}

// NewONNX decodes an ONNX model held in memory.
func NewONNX(data []byte) (*ONNXEvaluator, error) {
	backend := gorgonnx.NewGraph()
	model := onnx.NewModel(backend)
	if err := model.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ONNX model: %w", err)
	}
	return &ONNXEvaluator{
		backend:     backend,
		model:       model,
		fingerprint: xxhash.Sum64(data),
	}, nil
}

// Evaluate implements Evaluator. A failed inference is logged and scored
// as the neutral outcome.
func (e *ONNXEvaluator) Evaluate(features []float64) Outcome {
	if len(features) != FeatureSize {
		return Neutral
	}

	input := make([]float32, FeatureSize)
	for i, v := range features {
		input[i] = float32(v)
	}

	out, err := e.run(input)
	if err != nil {
		log.Warn().Err(err).Msg("onnx-inference-failed")
		return Neutral
	}
	return fromProbabilities(out)
}

func (e *ONNXEvaluator) run(input []float32) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := tensor.New(tensor.WithShape(1, FeatureSize), tensor.WithBacking(input))
	if err := e.model.SetInput(0, t); err != nil {
		return nil, fmt.Errorf("set input: %w", err)
	}
	if err := e.backend.Run(); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	outputs, err := e.model.GetOutputTensors()
	if err != nil {
		return nil, fmt.Errorf("get outputs: %w", err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("model produced no outputs")
	}

	data, ok := outputs[0].Data().([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0].Data())
	}
	if len(data) != OutputSize {
		return nil, fmt.Errorf("expected %d outputs, got %d", OutputSize, len(data))
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out, nil
}

// Fingerprint identifies the loaded model.
func (e *ONNXEvaluator) Fingerprint() uint64 {
	return e.fingerprint
}
