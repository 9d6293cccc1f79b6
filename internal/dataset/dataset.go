// Package dataset reads labelled Connect Four positions from the two CSV
// layouts evaluators are trained on and measures how well an evaluator
// predicts their outcomes.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/eval"
)

// Label classes. The numeric layout stores them minus one.
const (
	RedLoses = 0
	Draw     = 1
	RedWins  = 2
	Classes  = 3
)

// Example is one labelled position. Features use the board's row-major
// layout, top row first, Red = +1 and Yellow = -1.
type Example struct {
	Features []float64
	Label    int
}

// ReadNumeric reads the numeric layout: 42 numbers per line in row-major
// order followed by a label of -1, 0 or 1. The first start lines are
// skipped and at most n examples are returned. Lines with the wrong
// number of cells are skipped.
func ReadNumeric(r io.Reader, start, n int) ([]Example, error) {
	return read(r, start, n, "numeric", parseNumeric)
}

// ReadString reads the UCI connect-4 layout: 42 cells of x, o or b listed
// column by column starting at the bottom of column 0, then win, draw or
// loss from Red's point of view. Skipping and limits work as in
// ReadNumeric.
func ReadString(r io.Reader, start, n int) ([]Example, error) {
	return read(r, start, n, "string", parseString)
}

var errSkip = errors.New("skip line")

func read(r io.Reader, start, n int, layout string, parse func([]string) (Example, error)) ([]Example, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var examples []Example
	skipped := 0
	for line := 0; n <= 0 || len(examples) < n; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return examples, fmt.Errorf("%s dataset: %w", layout, err)
		}
		if line < start {
			continue
		}
		ex, err := parse(record)
		if errors.Is(err, errSkip) {
			skipped++
			continue
		}
		if err != nil {
			pos, _ := cr.FieldPos(0)
			return examples, fmt.Errorf("%s dataset line %d: %w", layout, pos, err)
		}
		examples = append(examples, ex)
	}
	log.Debug().Str("layout", layout).Int("examples", len(examples)).
		Int("skipped", skipped).Msg("dataset-loaded")
	return examples, nil
}

func parseNumeric(record []string) (Example, error) {
	if len(record) != board.NumCells+1 {
		return Example{}, errSkip
	}
	features := make([]float64, board.NumCells)
	for i := range features {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return Example{}, fmt.Errorf("cell %d: %w", i, err)
		}
		features[i] = v
	}
	label, err := strconv.ParseFloat(strings.TrimSpace(record[board.NumCells]), 64)
	if err != nil {
		return Example{}, fmt.Errorf("label: %w", err)
	}
	class := int(label) + 1
	if class < RedLoses || class > RedWins || float64(class-1) != label {
		return Example{}, fmt.Errorf("label %v out of range", label)
	}
	return Example{Features: features, Label: class}, nil
}

func parseString(record []string) (Example, error) {
	if len(record) != board.NumCells+1 {
		return Example{}, errSkip
	}
	features := make([]float64, board.NumCells)
	for i, cell := range record[:board.NumCells] {
		row := board.Height - 1 - i%board.Height
		col := i / board.Height
		switch strings.TrimSpace(cell) {
		case "x":
			features[row*board.Width+col] = 1
		case "o":
			features[row*board.Width+col] = -1
		case "b":
		default:
			return Example{}, fmt.Errorf("cell %d: unknown piece %q", i, cell)
		}
	}
	var label int
	switch strings.TrimSpace(record[board.NumCells]) {
	case "win":
		label = RedWins
	case "draw":
		label = Draw
	case "loss":
		label = RedLoses
	default:
		return Example{}, fmt.Errorf("unknown result %q", record[board.NumCells])
	}
	return Example{Features: features, Label: label}, nil
}

// Report summarises an evaluator over a dataset.
type Report struct {
	Examples  int                   `yaml:"examples"`
	Correct   int                   `yaml:"correct"`
	Accuracy  float64               `yaml:"accuracy"`
	LogLoss   float64               `yaml:"log_loss"`
	Confusion [Classes][Classes]int `yaml:"confusion"` // [label][predicted]
}

// minProb keeps the log loss finite for confident wrong predictions.
const minProb = 1e-12

// Accuracy evaluates every example and compares the most likely outcome
// with the label.
func Accuracy(ev eval.Evaluator, examples []Example) Report {
	rep := Report{Examples: len(examples)}
	if len(examples) == 0 {
		return rep
	}
	losses := make([]float64, len(examples))
	for i, ex := range examples {
		o := ev.Evaluate(ex.Features)
		probs := []float64{o.Loss, o.Tie, o.Win}
		predicted := floats.MaxIdx(probs)
		rep.Confusion[ex.Label][predicted]++
		if predicted == ex.Label {
			rep.Correct++
		}
		losses[i] = -math.Log(math.Max(probs[ex.Label], minProb))
	}
	rep.Accuracy = float64(rep.Correct) / float64(rep.Examples)
	rep.LogLoss = stat.Mean(losses, nil)
	return rep
}
