// Package logging configures the process-wide zerolog logger used by all
// faunareel components. Output is pretty console text by default and JSON
// when running unattended.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var initialized bool

// Init configures the global logger once. Level is one of debug, info,
// warn or error; unknown values fall back to info. When pretty is true,
// output goes through a human-readable console writer.
func Init(level string, pretty bool) {
	if initialized {
		return
	}

	zerolog.SetGlobalLevel(parseLevel(level))

	if pretty {
		out := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	initialized = true
}

// ForRun returns a logger carrying the run identifier so every line of a
// pipeline run can be correlated.
func ForRun(runID string) zerolog.Logger {
	return log.With().Str("run_id", runID).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
