// Package cli implements the cyclesearch command-line interface.
//
// This package provides the search commands for the three cycle families,
// closed-form counts, phase tables, the run archive browser, the HTTP
// server and cache management. The CLI is built using cobra and logs via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - cogwheel, nested, nestcog: search for minimal phase cycles
//   - count, predict: size a search space or predict a cogwheel cycle
//   - phases: print the phase table of a found cycle
//   - history: browse archived runs
//   - serve: run the HTTP API with Prometheus metrics
//   - cache: manage the local result cache
//
// # Logging
//
// Warnings are logged by default. -v adds one line per scan count and -vv
// one line per buffer fill. Loggers are passed through context.Context.
//
// # Example
//
//	import "github.com/matzehuels/cyclesearch/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogWarn)
//	    if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// LevelFor maps a -v count to a log level. The pipeline logs one line per
// scan count at info and one line per buffer fill at debug.
func LevelFor(verbosity int) log.Level {
	switch {
	case verbosity >= 2:
		return LogDebug
	case verbosity == 1:
		return LogInfo
	}
	return LogWarn
}

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps (e.g. "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
// It is meant for one goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing an operation.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond, e.g.
// "Loaded 12 runs (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for the subcommands.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
