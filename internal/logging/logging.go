// Package logging configures the process logger for squeezectl.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup builds the CLI logger and installs it as the process default.
// Output goes to stderr so command output on stdout stays clean for piping.
// verbose lifts the level to debug, which includes per-request RPC tracing.
func Setup(verbose bool) zerolog.Logger {
	logger := SetupWithWriter(os.Stderr, verbose)
	log.Logger = logger
	return logger
}

// SetupWithWriter is Setup with an explicit sink, for tests.
func SetupWithWriter(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return zerolog.New(console).With().Timestamp().Logger().Level(level)
}
