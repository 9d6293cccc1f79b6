package eval

import (
	"math"

	"github.com/hailam/fourplay/internal/board"
)

// Window weights indexed by the number of same-colored pieces in an
// otherwise empty four-cell window.
var windowWeights = [board.Connect + 1]float64{0, 1, 4, 16, 512}

const (
	centerWeight   = 3.0
	heuristicScale = 40.0
	// maxTieMass is the tie probability on a full board.
	maxTieMass = 0.8
)

// windows lists the flat indexes of every four-cell line on the board.
var windows = buildWindows()

func buildWindows() [][board.Connect]int {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}
	var out [][board.Connect]int
	for r := 0; r < board.Height; r++ {
		for c := 0; c < board.Width; c++ {
			for _, d := range dirs {
				endR := r + d[0]*(board.Connect-1)
				endC := c + d[1]*(board.Connect-1)
				if endR < 0 || endR >= board.Height || endC < 0 || endC >= board.Width {
					continue
				}
				var w [board.Connect]int
				for i := range w {
					w[i] = (r+d[0]*i)*board.Width + c + d[1]*i
				}
				out = append(out, w)
			}
		}
	}
	return out
}

// Heuristic scores a position by counting open lines for each side and
// rewarding control of the center column. It needs no model file and is
// the default evaluator.
type Heuristic struct{}

// NewHeuristic returns the window-counting evaluator.
func NewHeuristic() Heuristic {
	return Heuristic{}
}

// Evaluate implements Evaluator.
func (Heuristic) Evaluate(features []float64) Outcome {
	if len(features) != FeatureSize {
		return Neutral
	}

	raw := 0.0
	for _, w := range windows {
		red, yellow := 0, 0
		for _, idx := range w {
			switch {
			case features[idx] > 0:
				red++
			case features[idx] < 0:
				yellow++
			}
		}
		if red > 0 && yellow > 0 {
			continue
		}
		raw += windowWeights[red] - windowWeights[yellow]
	}

	filled := 0
	center := board.Width / 2
	for idx, v := range features {
		if v == 0 {
			continue
		}
		filled++
		if idx%board.Width == center {
			raw += centerWeight * v
		}
	}

	p := 1 / (1 + math.Exp(-raw/heuristicScale))
	tie := maxTieMass * float64(filled) / FeatureSize
	return Outcome{
		Loss: (1 - tie) * (1 - p),
		Tie:  tie,
		Win:  (1 - tie) * p,
	}
}
