// Package logging configures the global zerolog logger used across every
// phase and the orchestrator.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger from CORE_LOG_LEVEL (trace, debug,
// info, warn, error; default info). Output is a console writer to stderr —
// this is an interactive batch tool, not a service shipping to a log
// aggregator, so there is no JSON-vs-console branch.
func Init() {
	switch os.Getenv("CORE_LOG_LEVEL") {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// WithPhase returns a sub-logger carrying the phase name and run id, used
// for every log line emitted while a phase.Runner is active.
func WithPhase(phase string, runID int64) zerolog.Logger {
	return log.With().Str("phase", phase).Int64("run_id", runID).Logger()
}

// WithImage returns a sub-logger enriched with an image identifier, used
// for per-item failure logging inside a phase's work loop.
func WithImage(base zerolog.Logger, imageID string) zerolog.Logger {
	return base.With().Str("image_id", imageID).Logger()
}
