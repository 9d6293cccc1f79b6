// Package app wires the configured evaluator, engine, database, book and
// game together for the fourplay binaries.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hailam/fourplay/internal/book"
	"github.com/hailam/fourplay/internal/config"
	"github.com/hailam/fourplay/internal/engine"
	"github.com/hailam/fourplay/internal/eval"
	"github.com/hailam/fourplay/internal/game"
	"github.com/hailam/fourplay/internal/storage"
)

// App holds everything a client needs. Store and Book are nil when the
// database is disabled or could not be opened.
type App struct {
	Config      *config.Config
	Evaluator   eval.Evaluator
	Fingerprint uint64
	Engine      *engine.Engine
	Store       *storage.Storage
	Book        *book.Book
	Game        *game.Game
}

// Options tune Open.
type Options struct {
	// NoStorage skips the database, which also disables the book.
	NoStorage bool
	// InMemory keeps the database in memory.
	InMemory bool
}

// Open builds an App from cfg. A database that fails to open is logged
// and skipped; an evaluator that fails to load is an error.
func Open(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kind := cfg.EvalKind()
	modelPath := ""
	if kind != eval.KindHeuristic {
		var err error
		if modelPath, err = FindModel(cfg.Eval.ModelPath, cfg.DataDir); err != nil {
			return nil, err
		}
	}
	ev, fingerprint, err := eval.Open(kind, modelPath)
	if err != nil {
		return nil, fmt.Errorf("open evaluator: %w", err)
	}

	eng, err := engine.NewEngine(ev, cfg.EngineConfig())
	if err != nil {
		return nil, err
	}
	eng.SetDifficulty(cfg.Difficulty())
	eng.SetThreads(cfg.Search.Threads)

	a := &App{
		Config:      cfg,
		Evaluator:   ev,
		Fingerprint: fingerprint,
		Engine:      eng,
	}

	if !opts.NoStorage {
		a.Store, err = openStorage(cfg.DataDir, opts.InMemory)
		if err != nil {
			log.Warn().Err(err).Msg("storage-disabled")
		}
	}

	gameOpts := []game.Option{
		game.WithFirstMoveDepth(cfg.Game.FirstMoveDepth),
		game.WithEvalName(string(kind)),
	}
	if cfg.Search.Depth > 0 || cfg.Search.MoveTime > 0 {
		gameOpts = append(gameOpts, game.WithLimitOverrides(cfg.Search.Depth, cfg.Search.MoveTime))
	}
	if a.Store != nil {
		gameOpts = append(gameOpts, game.WithRecorder(a.Store))
		if cfg.Game.UseBook {
			a.Book = book.New(a.Store.DB(), book.Fingerprint(fingerprint, cfg.EngineConfig()))
			gameOpts = append(gameOpts, game.WithBook(a.Book))
		}
	}
	a.Game = game.New(eng, gameOpts...)

	log.Debug().
		Str("eval", string(kind)).
		Str("difficulty", eng.Difficulty().String()).
		Int("threads", eng.Threads()).
		Bool("storage", a.Store != nil).
		Bool("book", a.Book != nil).
		Msg("app-ready")
	return a, nil
}

func openStorage(dataDir string, inMemory bool) (*storage.Storage, error) {
	if inMemory {
		return storage.OpenInMemory()
	}
	if dataDir == "" {
		return storage.NewStorage()
	}
	dir, err := storage.ResolveDir(dataDir, "db")
	if err != nil {
		return nil, err
	}
	return storage.Open(dir)
}

// Close releases the database.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// FindModel resolves a model path. An existing path is used as given; a
// bare file name is also looked up in the models directory under dataDir
// (or the platform data directory) and in ./models.
func FindModel(path, dataDir string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no model path configured")
	}
	if fileExists(path) {
		return path, nil
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("model %s not found", path)
	}

	var searchPaths []string
	if dir, err := storage.ResolveDir(dataDir, "models"); err == nil {
		searchPaths = append(searchPaths, dir)
	}
	searchPaths = append(searchPaths, "models")

	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, path)
		if fileExists(candidate) {
			log.Debug().Str("path", candidate).Msg("model-found")
			return candidate, nil
		}
	}
	return "", fmt.Errorf("model %s not found in %v", path, searchPaths)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
