// Package eval defines how a search leaf is scored and provides the
// evaluators the engine can use: a hand-written heuristic and loaders for
// models trained elsewhere.
package eval

import (
	"math"

	"github.com/hailam/fourplay/internal/board"
)

// FeatureSize is the length of the feature vector every evaluator accepts.
const FeatureSize = board.NumCells

// Outcome is a probability distribution over the game result from Red's
// point of view. Loss means Red loses.
type Outcome struct {
	Loss float64
	Tie  float64
	Win  float64
}

// Neutral is returned when an evaluator cannot produce an opinion.
var Neutral = Outcome{Tie: 1}

// Score collapses the outcome to Win - Loss, negated for Yellow.
func (o Outcome) Score(redPerspective bool) float64 {
	s := o.Win - o.Loss
	if !redPerspective {
		return -s
	}
	return s
}

// Evaluator maps a feature vector to an Outcome. Implementations must be
// deterministic, safe for concurrent use, and must not retain or modify
// the input slice.
type Evaluator interface {
	Evaluate(features []float64) Outcome
}

// Func adapts an ordinary function to the Evaluator interface.
type Func func(features []float64) Outcome

// Evaluate calls f(features).
func (f Func) Evaluate(features []float64) Outcome {
	return f(features)
}

// fromProbabilities builds an Outcome from a loss/tie/win triple. Values
// that do not already form a distribution are passed through softmax.
func fromProbabilities(p []float64) Outcome {
	if len(p) != 3 {
		return Neutral
	}
	sum := 0.0
	for _, v := range p {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return softmax(p)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-3 {
		return softmax(p)
	}
	return Outcome{Loss: p[0] / sum, Tie: p[1] / sum, Win: p[2] / sum}
}

// fromScalar maps a value in [-1, 1] to an Outcome whose score is that value.
func fromScalar(v float64) Outcome {
	if math.IsNaN(v) {
		return Neutral
	}
	v = math.Max(-1, math.Min(1, v))
	return Outcome{
		Loss: math.Max(-v, 0),
		Tie:  1 - math.Abs(v),
		Win:  math.Max(v, 0),
	}
}

func softmax(logits []float64) Outcome {
	maxLogit := math.Inf(-1)
	for _, v := range logits {
		if math.IsNaN(v) {
			return Neutral
		}
		maxLogit = math.Max(maxLogit, v)
	}
	exp := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		exp[i] = math.Exp(v - maxLogit)
		sum += exp[i]
	}
	return Outcome{Loss: exp[0] / sum, Tie: exp[1] / sum, Win: exp[2] / sum}
}
