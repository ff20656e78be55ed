package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/pricemap/pkg/constants"
)

// Config describes how a logger is built.
//
// Format is "json", "console" (alias "text" or "pretty") or "auto", which
// picks console output only when the destination is a terminal. Output is
// "stderr", "stdout", "discard" or a file path opened for appending.
type Config struct {
	Level      string
	Format     string
	Output     string
	TimeFormat string
	NoColor    bool
	AddCaller  bool
	Fields     map[string]any
}

// DefaultConfig returns info-level auto-format logging to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
	}
}

// ConfigFromEnv overlays the LOG_* environment variables on DefaultConfig.
// DEBUG=true is honored when LOG_LEVEL is unset.
func ConfigFromEnv() *Config {
	c := DefaultConfig()
	env := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "true" {
		c.Level = "debug"
	}
	env("LOG_LEVEL", &c.Level)
	env("LOG_FORMAT", &c.Format)
	env("LOG_OUTPUT", &c.Output)
	env("LOG_TIME_FORMAT", &c.TimeFormat)

	c.NoColor = os.Getenv("NO_COLOR") != ""
	c.AddCaller = os.Getenv("LOG_CALLER") == "true"
	c.Fields = parseFields(os.Getenv("LOG_FIELDS"))
	return c
}

// NewLoggerFromConfig builds a logger and sets zerolog's global level to
// match. Callers are recorded when requested or when the level is debug or
// lower.
func NewLoggerFromConfig(c *Config) zerolog.Logger {
	if c == nil {
		c = DefaultConfig()
	}
	level := parseLevel(c.Level)
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(c.writer()).Level(level).With().Timestamp()
	if len(c.Fields) > 0 {
		ctx = ctx.Fields(c.Fields)
	}
	if c.AddCaller || level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// writer resolves Output and wraps it in a console writer when the format
// asks for one. An unopenable file path falls back to stderr.
func (c *Config) writer() io.Writer {
	var out io.Writer
	switch strings.ToLower(c.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		return io.Discard
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.FilePermissions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: cannot open %s: %v\n", c.Output, err)
			out = os.Stderr
		} else {
			out = f
		}
	}

	if !c.console(out) {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeLayout(c.TimeFormat),
		NoColor:    c.NoColor,
	}
}

func (c *Config) console(out io.Writer) bool {
	switch strings.ToLower(c.Format) {
	case "console", "text", "pretty":
		return true
	case "json":
		return false
	}
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// parseLevel maps a level name to a zerolog level, defaulting to info.
func parseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

var namedLayouts = map[string]string{
	"":        time.Kitchen,
	"kitchen": time.Kitchen,
	"rfc3339": time.RFC3339,
	"iso8601": time.RFC3339,
}

// timeLayout accepts a named layout or a literal Go time layout.
func timeLayout(name string) string {
	if layout, ok := namedLayouts[strings.ToLower(name)]; ok {
		return layout
	}
	return name
}

// parseFields reads "key=value,key=value". Entries without '=' are skipped.
func parseFields(s string) map[string]any {
	if s == "" {
		return nil
	}
	fields := make(map[string]any)
	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}
