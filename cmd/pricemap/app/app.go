// Package app provides the application context and dependency management
// for the pricemap CLI. It centralizes configuration, logging and the
// lifecycle of the shared combiner.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/pricemap/cmd/application"
	"github.com/agentstation/pricemap/pkg/combiner"
	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/registry"
)

// App represents the pricemap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Registry and combiner (lazy-initialized, singleton)
	mu       sync.RWMutex
	registry *registry.Registry
	combiner *combiner.Combiner
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// DebounceInterval returns the configured watcher debounce interval.
func (a *App) DebounceInterval() time.Duration {
	return a.config.DebounceInterval
}

// ShutdownTimeout returns the configured shutdown drain timeout.
func (a *App) ShutdownTimeout() time.Duration {
	return a.config.ShutdownTimeout
}

// Registry returns the registry, loading it on first use.
func (a *App) Registry() (*registry.Registry, error) {
	a.mu.RLock()
	if a.registry != nil {
		reg := a.registry
		a.mu.RUnlock()
		return reg, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadRegistry()
}

// Combiner returns the combiner, creating it lazily if needed.
func (a *App) Combiner() (*combiner.Combiner, error) {
	a.mu.RLock()
	if a.combiner != nil {
		c := a.combiner
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.combiner != nil {
		return a.combiner, nil
	}

	reg, err := a.loadRegistry()
	if err != nil {
		return nil, err
	}
	c, err := combiner.New(reg)
	if err != nil {
		return nil, errors.WrapResource("create", "combiner", "", err)
	}

	a.combiner = c
	return c, nil
}

// Shutdown performs graceful shutdown of the application. The watch command
// drains its own scheduler before returning, so nothing is left running here;
// Shutdown only reports the cache size for diagnostics.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	c := a.combiner
	a.mu.RUnlock()

	if c != nil {
		a.logger.Debug().Int("cached_files", c.Cache().Len()).Msg("Shutting down")
	}
	return nil
}

// loadRegistry loads the registry. Callers hold a.mu.
func (a *App) loadRegistry() (*registry.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}

	var reg *registry.Registry
	if a.config.RegistryFile != "" {
		loaded, err := registry.Load(a.config.RegistryFile, a.config.DatabaseRoot)
		if err != nil {
			return nil, errors.WrapResource("load", "registry", a.config.RegistryFile, err)
		}
		reg = loaded
	} else {
		reg = registry.Default(a.config.DatabaseRoot)
	}

	a.logger.Debug().
		Str("root", reg.Root).
		Strs("vendors", reg.Vendors).
		Int("categories", len(reg.Categories)).
		Msg("Registry loaded")

	a.registry = reg
	return reg, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRegistry sets a custom registry (useful for testing).
func WithRegistry(reg *registry.Registry) Option {
	return func(a *App) error {
		a.registry = reg
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
