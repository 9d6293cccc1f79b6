// Package protocol implements the C4P engine protocol, a line-based text
// protocol modelled on UCI that lets other programs drive the engine.
package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/eval"
)

// Handler implements the C4P protocol for one engine.
type Handler struct {
	engine   *engine.Engine
	position *board.Board
	depth    int // default depth for "go" without limits, 0 = difficulty

	outMu sync.Mutex
	out   io.Writer

	// Search state
	searchDone chan struct{}
	cancel     context.CancelFunc

	// CPU profiling
	profileFile *os.File
}

// New creates a protocol handler writing responses to w.
func New(eng *engine.Engine, w io.Writer) *Handler {
	h := &Handler{
		engine:   eng,
		position: board.NewBoard(),
		out:      w,
	}
	eng.OnInfo = h.sendInfo
	return h
}

// Run reads commands from r until "quit" or end of input. A running search
// is stopped before Run returns.
func (h *Handler) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "c4p":
			h.handleHello()
		case "isready":
			h.waitSearch()
			h.println("readyok")
		case "newgame":
			h.handleStop()
			h.position = board.NewBoard()
		case "position":
			h.handlePosition(args)
		case "go":
			h.handleGo(args)
		case "stop":
			h.handleStop()
		case "eval":
			h.handleEval()
		case "setoption":
			h.handleSetOption(args)
		case "d":
			h.handleDisplay()
		case "quit":
			h.handleQuit()
			return nil
		default:
			h.printf("info string unknown command %s\n", cmd)
		}
	}

	h.handleQuit()
	return scanner.Err()
}

// handleHello responds to the "c4p" command.
func (h *Handler) handleHello() {
	h.println("id name FourPlay")
	h.println("id author FourPlay Team")
	h.println("")
	h.println("option name Depth type spin default 0 min 0 max 42")
	h.printf("option name Threads type spin default %d min 1 max 64\n", h.engine.Threads())
	h.printf("option name Difficulty type combo default %s var easy var medium var hard\n", h.engine.Difficulty())
	h.println("option name CPUProfile type string default <empty>")
	h.println("c4pok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves 3 3 4
//   - position grid <rows> <side>
//   - position grid <rows> <side> moves 2 5
func (h *Handler) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Board
	switch args[0] {
	case "startpos":
		pos = board.NewBoard()
	case "grid":
		var err error
		pos, err = board.ParsePosition(strings.Join(args[1:movesAt], " "))
		if err != nil {
			h.printf("info string invalid position: %v\n", err)
			return
		}
	default:
		h.printf("info string invalid position: unknown kind %s\n", args[0])
		return
	}

	if movesAt < len(args) {
		cols := make([]int, 0, len(args)-movesAt-1)
		for _, s := range args[movesAt+1:] {
			col, err := strconv.Atoi(s)
			if err != nil {
				h.printf("info string invalid move: %s\n", s)
				return
			}
			cols = append(cols, col)
		}
		if err := pos.PlayMoves(cols); err != nil {
			h.printf("info string invalid moves: %v\n", err)
			return
		}
	}

	h.position = pos
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
}

// handleGo starts a search with the given parameters.
func (h *Handler) handleGo(args []string) {
	h.handleStop()

	opts := parseGoOptions(args)
	limits := h.calculateLimits(opts)
	pos := h.position.Copy()

	if pos.State().IsTerminal() {
		h.println("bestmove none")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.searchDone = make(chan struct{})

	go func() {
		defer close(h.searchDone)
		defer cancel()

		best := h.engine.SearchWithLimits(ctx, pos, limits)
		h.printf("bestmove %d\n", best.Column)
	}()
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		}
	}

	return opts
}

// calculateLimits converts GoOptions to engine.SearchLimits. Without any
// option the Depth setting or the difficulty decides.
func (h *Handler) calculateLimits(opts GoOptions) engine.SearchLimits {
	if opts.Depth > 0 || opts.MoveTime > 0 {
		return engine.SearchLimits{Depth: opts.Depth, MoveTime: opts.MoveTime}
	}
	if h.depth > 0 {
		return engine.SearchLimits{Depth: h.depth}
	}
	return engine.DifficultySettings[h.engine.Difficulty()]
}

// sendInfo outputs search info in protocol format.
func (h *Handler) sendInfo(info engine.SearchInfo) {
	parts := []string{
		fmt.Sprintf("depth %d", info.Depth),
		"score " + h.engine.ScoreString(info.Score),
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	parts = append(parts, fmt.Sprintf("pv %d", info.Column))

	h.printf("info %s\n", strings.Join(parts, " "))
}

// handleEval prints the evaluator's view of the current position.
func (h *Handler) handleEval() {
	h.waitSearch()
	o := h.engine.Outcome(h.position)
	score := h.engine.Evaluate(h.position, h.position.RedToMove())
	h.println(EvalLine(o, score))
}

// handleDisplay prints the board.
func (h *Handler) handleDisplay() {
	h.printf("%s", h.position.String())
	h.printf("Position: %s\n", h.position.Notation())
	h.printf("Hash: %016x\n", h.position.Hash())
}

// waitSearch blocks until a running search has finished.
func (h *Handler) waitSearch() {
	if h.searchDone != nil {
		<-h.searchDone
	}
}

// handleStop stops the current search and waits for its bestmove.
func (h *Handler) handleStop() {
	if h.cancel != nil {
		h.cancel()
		h.engine.Stop()
	}
	h.waitSearch()
	h.cancel = nil
	h.searchDone = nil
}

// handleQuit stops searching and profiling.
func (h *Handler) handleQuit() {
	h.handleStop()
	h.stopProfile()
}

// handleSetOption processes "setoption" commands.
func (h *Handler) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	h.handleStop()

	switch strings.ToLower(name) {
	case "depth":
		depth, err := strconv.Atoi(value)
		if err != nil || depth < 0 {
			h.printf("info string invalid depth %q\n", value)
			return
		}
		h.depth = depth
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			h.printf("info string invalid threads %q\n", value)
			return
		}
		h.engine.SetThreads(n)
	case "difficulty":
		d, err := engine.ParseDifficulty(value)
		if err != nil {
			h.printf("info string %v\n", err)
			return
		}
		h.engine.SetDifficulty(d)
	case "cpuprofile":
		h.stopProfile()
		if value != "" && value != "stop" {
			f, err := os.Create(value)
			if err != nil {
				h.printf("info string failed to create profile: %v\n", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				h.printf("info string failed to start profile: %v\n", err)
				return
			}
			h.profileFile = f
			log.Info().Str("file", value).Msg("cpu-profile-started")
		}
	default:
		h.printf("info string unknown option %s\n", name)
	}
}

func (h *Handler) stopProfile() {
	if h.profileFile == nil {
		return
	}
	pprof.StopCPUProfile()
	h.profileFile.Close()
	log.Info().Str("file", h.profileFile.Name()).Msg("cpu-profile-saved")
	h.profileFile = nil
}

// EvalLine formats an outcome the way "eval" prints it.
func EvalLine(o eval.Outcome, score float64) string {
	return fmt.Sprintf("eval loss %.4f tie %.4f win %.4f score %+.4f", o.Loss, o.Tie, o.Win, score)
}

func (h *Handler) println(s string) {
	h.printf("%s\n", s)
}

func (h *Handler) printf(format string, args ...any) {
	h.outMu.Lock()
	defer h.outMu.Unlock()
	fmt.Fprintf(h.out, format, args...)
}
