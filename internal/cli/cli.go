package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/feakit/bulkgridgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Values from an optional -config YAML file fill in for flags the caller did
// not pass explicitly.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("bulkgridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
BulkGridGo - a typed importer for Nastran bulk data decks.

Usage:
  bulkgridgo [options] [DECK_PATH]

Arguments:
  DECK_PATH
    Path to a single bulk data file (.bdf, .dat, .nas) or a directory of them.

Options:
`)
		flagSet.PrintDefaults()
	}

	deckFlag := flagSet.String("deck", "", "Path to the deck file or directory.")
	dFlag := flagSet.String("d", "", "Path to the deck file or directory (shorthand).")
	cardsPathFlag := flagSet.String("cards-path", "", "Directory of extra card manifests, merged over the builtins.")
	configFlag := flagSet.String("config", "", "Path to a YAML run-configuration file.")
	exportFlag := flagSet.String("export", "", "Write the resolved model and report as JSON to this path.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", app.DefaultWorkers, "Number of concurrent workers for batch imports.")
	strictFlag := flagSet.Bool("strict", false, "Treat unknown card types as fatal instead of skipping them.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *deckFlag != "" {
		path = *deckFlag
	} else if *dFlag != "" {
		path = *dFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Deck path determined.", "path", path)

	if path == "" {
		slog.Debug("No deck path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	values := app.Config{
		DeckPath:  path,
		CardsPath: *cardsPathFlag,
		Export:    *exportFlag,
		LogFormat: *logFormatFlag,
		LogLevel:  *logLevelFlag,
		Workers:   *workersFlag,
		Strict:    *strictFlag,
	}

	if *configFlag != "" {
		fc, err := app.LoadConfigFile(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		passed := make(map[string]bool)
		flagSet.Visit(func(f *flag.Flag) { passed[f.Name] = true })

		if fc.LogLevel != "" && !passed["log-level"] {
			values.LogLevel = fc.LogLevel
		}
		if fc.LogFormat != "" && !passed["log-format"] {
			values.LogFormat = fc.LogFormat
		}
		if fc.CardsPath != "" && !passed["cards-path"] {
			values.CardsPath = fc.CardsPath
		}
		if fc.Export != "" && !passed["export"] {
			values.Export = fc.Export
		}
		if fc.Workers > 0 && !passed["workers"] {
			values.Workers = fc.Workers
		}
		if fc.Strict && !passed["strict"] {
			values.Strict = true
		}
		values.MaxIncludeDepth = fc.MaxIncludeDepth
		slog.Debug("Run-configuration file applied.", "path", *configFlag)
	}

	values.LogFormat = strings.ToLower(values.LogFormat)
	if values.LogFormat != "text" && values.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	values.LogLevel = strings.ToLower(values.LogLevel)
	switch values.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if values.Workers < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	if values.MaxIncludeDepth < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid max_include_depth: must not be negative"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(values)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
