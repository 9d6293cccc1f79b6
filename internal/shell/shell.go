// Package shell is the terminal client: a readline loop for playing the
// engine, asking for hints and browsing stored games.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/book"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/game"
	"github.com/hailam/fourplay/internal/storage"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errQuit              = errors.New("quit")
	errNoStorage         = errors.New("no database is open")
	errNoBook            = errors.New("the analysis book is disabled")
)

type Response struct {
	message string
}

func Msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a line into a command, positional arguments and
// "-key value" options. Quoting follows shell rules.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// Deps are the pieces the shell drives. Store and Book may be nil.
type Deps struct {
	Engine *engine.Engine
	Game   *game.Game
	Store  *storage.Storage
	Book   *book.Book
}

type ShellController struct {
	l     *readline.Instance
	out   io.Writer
	ctx   context.Context
	eng   *engine.Engine
	game  *game.Game
	store *storage.Storage
	book  *book.Book
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// NewShellController creates a shell reading from the terminal. An empty
// historyFile disables history.
func NewShellController(deps Deps, historyFile string) (*ShellController, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mfourplay>\033[0m ",
		HistoryFile:     historyFile,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc := newController(deps, l.Stderr())
	sc.l = l
	return sc, nil
}

func newController(deps Deps, out io.Writer) *ShellController {
	return &ShellController{
		out:   out,
		ctx:   context.Background(),
		eng:   deps.Engine,
		game:  deps.Game,
		store: deps.Store,
		book:  deps.Book,
	}
}

func (sc *ShellController) handle(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	if _, err := strconv.Atoi(cmd.cmd); err == nil {
		return sc.drop([]string{cmd.cmd})
	}

	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(cmd.args)
	case "drop", "d":
		return sc.drop(cmd.args)
	case "hint", "h":
		return sc.hint()
	case "eval", "e":
		return sc.evaluate()
	case "show", "s", "b":
		return sc.show()
	case "level":
		return sc.level(cmd.args)
	case "history":
		return sc.history(cmd.args)
	case "stats":
		return sc.stats()
	case "book":
		return sc.bookCmd(cmd)
	case "help", "?":
		return Msg(usage), nil
	case "quit", "exit", "bye":
		return nil, errQuit
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

func (sc *ShellController) newGame(args []string) (*Response, error) {
	human := board.RedPlayer
	if len(args) > 0 {
		c, ok := board.ParseColor(strings.ToLower(args[0]))
		if !ok {
			return nil, fmt.Errorf("unknown color %q, use red or yellow", args[0])
		}
		human = c
	}
	sc.game.Start(sc.ctx, human)

	var sb strings.Builder
	fmt.Fprintf(&sb, "New game, you play %s against %s.\n", human, sc.eng.Difficulty())
	if last := sc.game.LastMove(); last >= 0 {
		fmt.Fprintf(&sb, "Engine played %d.\n", last)
	}
	sb.WriteString(sc.display())
	return Msg(sb.String()), nil
}

func (sc *ShellController) drop(args []string) (*Response, error) {
	if len(args) != 1 {
		return nil, errors.New("drop <column>")
	}
	col, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("bad column %q", args[0])
	}
	if sc.game.Over() {
		return nil, errors.New("the game is over, start a new one with `new`")
	}
	if !sc.game.HumanToMove() {
		return nil, errors.New("it is not your turn")
	}

	before := len(sc.game.Moves())
	ok, err := sc.game.PlayHuman(sc.ctx, col)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("column %d is full", col)
	}

	var sb strings.Builder
	if moves := sc.game.Moves(); len(moves) > before+1 {
		fmt.Fprintf(&sb, "Engine played %d (%s).\n", moves[len(moves)-1],
			sc.eng.ScoreString(sc.game.Evaluation()))
	}
	sb.WriteString(sc.display())
	return Msg(sb.String()), nil
}

func (sc *ShellController) hint() (*Response, error) {
	res, ok := sc.game.Hint(sc.ctx)
	if !ok {
		return nil, errors.New("no hint: it is not your turn")
	}
	return Msg(fmt.Sprintf("Hint: column %d (%s)", res.Column, sc.eng.ScoreString(res.Score))), nil
}

func (sc *ShellController) evaluate() (*Response, error) {
	b := sc.game.Board()
	o := sc.eng.Outcome(&b)
	return Msg(fmt.Sprintf("Red: win %.3f  tie %.3f  loss %.3f\nSide to move: %+.3f",
		o.Win, o.Tie, o.Loss, sc.eng.Evaluate(&b, b.RedToMove()))), nil
}

func (sc *ShellController) show() (*Response, error) {
	return Msg(sc.display()), nil
}

func (sc *ShellController) display() string {
	b := sc.game.Board()
	return b.String() + sc.game.StatusText() + "\n" + sc.game.EvaluationText()
}

func (sc *ShellController) level(args []string) (*Response, error) {
	if len(args) != 1 {
		return Msg("Level: " + sc.eng.Difficulty().String()), nil
	}
	d, err := engine.ParseDifficulty(args[0])
	if err != nil {
		return nil, err
	}
	sc.eng.SetDifficulty(d)

	if sc.store != nil {
		prefs, err := sc.store.LoadPreferences()
		if err == nil {
			prefs.Difficulty = storage.Difficulty(d)
			err = sc.store.SavePreferences(prefs)
		}
		if err != nil {
			log.Warn().Err(err).Msg("save-preferences-failed")
		}
	}
	return Msg("Level set to " + d.String()), nil
}

func (sc *ShellController) history(args []string) (*Response, error) {
	if sc.store == nil {
		return nil, errNoStorage
	}
	n := 10
	if len(args) > 0 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil {
			return nil, fmt.Errorf("bad count %q", args[0])
		}
	}
	games, err := sc.store.ListGames(n)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return Msg("No games played yet."), nil
	}

	var sb strings.Builder
	for _, g := range games {
		moves := lo.Map(g.Moves, func(c int, _ int) string { return strconv.Itoa(c) })
		fmt.Fprintf(&sb, "%s  %-11s you=%-6s %-6s %s\n",
			g.StartedAt.Format("2006-01-02 15:04"), g.Result, g.HumanColor, g.Difficulty,
			strings.Join(moves, " "))
	}
	return Msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) stats() (*Response, error) {
	if sc.store == nil {
		return nil, errNoStorage
	}
	st, err := sc.store.LoadStats()
	if err != nil {
		return nil, err
	}
	return Msg(fmt.Sprintf("Games %d  won %d  lost %d  drawn %d  win rate %.1f%%\nStreak %d  best %d",
		st.GamesPlayed, st.Wins, st.Losses, st.Draws, st.GetWinRate(),
		st.CurrentStreak, st.LongestWinStrk)), nil
}

func (sc *ShellController) bookCmd(cmd *shellcmd) (*Response, error) {
	if sc.book == nil {
		return nil, errNoBook
	}
	if len(cmd.args) == 0 {
		return Msg(fmt.Sprintf("Book: %d positions", sc.book.Size())), nil
	}
	path, ok := cmd.options["file"]
	if !ok {
		return nil, fmt.Errorf("book %s -file <path>", cmd.args[0])
	}

	switch cmd.args[0] {
	case "export":
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		n, err := sc.book.Export(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
		return Msg(fmt.Sprintf("Exported %d positions to %s", n, path)), nil
	case "import":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		n, err := sc.book.Import(f)
		if err != nil {
			return nil, err
		}
		return Msg(fmt.Sprintf("Imported %d positions from %s", n, path)), nil
	default:
		return nil, fmt.Errorf("unknown book command %q", cmd.args[0])
	}
}

// Loop reads commands until quit, end of input or an interrupt on an
// empty line. ctx bounds engine searches.
func (sc *ShellController) Loop(ctx context.Context) {
	defer sc.l.Close()
	sc.ctx = ctx

	sc.showMessage("fourplay shell. Type `help` for commands.")
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		resp, err := sc.handle(line)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

const usage = `Commands:
  new [red|yellow]          start a game, playing the given color (default red)
  drop <col>, <col>         drop a disc in column 0-6
  hint                      ask the engine for a move
  eval                      show the evaluator's opinion of the position
  show                      print the board
  level [easy|medium|hard]  show or set the engine level
  history [n]               list the last n stored games
  stats                     show your results
  book [export|import -file <path>]
                            show, export or import the analysis book
  help                      this text
  quit                      leave`
