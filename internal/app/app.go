package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/feakit/bulkgridgo/internal/assembler"
	"github.com/feakit/bulkgridgo/internal/carddef"
	"github.com/feakit/bulkgridgo/internal/deck"
)

// App encapsulates the importer's dependencies, configuration, and
// lifecycle: an isolated logger, the loaded card registry, and the results
// of the last Run.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *carddef.Registry
	cfg      *Config

	results []Result
}

// Result is the outcome of importing one deck.
type Result struct {
	Path   string
	Model  *deck.Model
	Report *assembler.Report
}

// NewApp constructs the application: it configures the isolated logger and
// loads the card registry (builtin manifests first, then any manifests under
// cfg.CardsPath). A manifest that fails to load or validate is a fatal
// startup error and panics; the entrypoint recovers it into an exit message.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("logger configured")

	reg := carddef.New()
	if err := carddef.LoadBuiltin(reg); err != nil {
		panic(fmt.Errorf("loading builtin card manifests: %w", err))
	}
	if cfg.CardsPath != "" {
		if err := carddef.LoadDir(reg, cfg.CardsPath); err != nil {
			panic(fmt.Errorf("loading card manifests from %s: %w", cfg.CardsPath, err))
		}
	}
	logger.Debug("card registry ready", "cards", len(reg.Types()))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		cfg:      cfg,
	}
}

// Registry returns the application's card registry. This is primarily for
// testing.
func (a *App) Registry() *carddef.Registry {
	return a.registry
}

// Results returns the outcome of the last Run, one entry per imported deck
// in discovery order.
func (a *App) Results() []Result {
	return a.results
}
