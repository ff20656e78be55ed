// Package logging holds the process-wide zerolog logger used by pricemap.
//
// The default logger is built from LOG_* environment variables at startup
// and replaced by the CLI once flags are parsed. Per-run fields such as the
// category and vendor travel on the context (see WithCategory, WithVendor).
package logging

import (
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var current atomic.Pointer[zerolog.Logger]

func init() {
	l := NewLoggerFromConfig(ConfigFromEnv())
	current.Store(&l)
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return current.Load()
}

// SetDefault replaces the process-wide logger. zerolog's global log.Logger
// follows it so third-party code logging through that package agrees.
func SetDefault(logger zerolog.Logger) {
	current.Store(&logger)
	log.Logger = logger
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return Default().Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return Default().Info() }

// Warn starts a warn event on the default logger.
func Warn() *zerolog.Event { return Default().Warn() }

// Err starts an error event carrying err, or an info event when err is nil.
func Err(err error) *zerolog.Event { return Default().Err(err) }
