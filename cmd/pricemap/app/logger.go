package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/pricemap/pkg/logging"
)

// NewLogger builds the CLI logger from config. See determineLogLevel for how
// --log-level, -v and -q combine. Debug and trace logging record callers.
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	logConfig := &logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		AddCaller: level == zerolog.DebugLevel.String() || level == zerolog.TraceLevel.String(),
	}

	return logging.NewLoggerFromConfig(logConfig)
}

// determineLogLevel resolves the effective level name. An explicit level
// wins, then quiet (also when combined with verbose), then verbose.
func determineLogLevel(config *Config) string {
	switch {
	case config.LogLevel != "":
		level := validateLogLevel(config.LogLevel)
		if level != config.LogLevel {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", config.LogLevel, level)
		}
		return level
	case config.Verbose && config.Quiet:
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return zerolog.WarnLevel.String()
	case config.Quiet:
		return zerolog.WarnLevel.String()
	case config.Verbose:
		return zerolog.DebugLevel.String()
	}
	return zerolog.InfoLevel.String()
}

// validateLogLevel returns the canonical zerolog name for level, or "info"
// when zerolog does not know it.
func validateLogLevel(level string) string {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel.String()
	}
	return parsed.String()
}
