// Package application provides the application interface for pricemap commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            c, err := app.Combiner()
//	            if err != nil {
//	                return err
//	            }
//	            _, err = c.Final(cmd.Context())
//	            return err
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    RegistryFunc: func() (*registry.Registry, error) {
//	        return registry.Default(t.TempDir()), nil
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/pricemap/pkg/combiner"
	"github.com/agentstation/pricemap/pkg/registry"
)

// Application provides the application interface that commands need.
// The App struct from cmd/pricemap/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Registry returns the effective registry: the registry file when one is
	// configured, the built-in default otherwise, rooted at the database root.
	Registry() (*registry.Registry, error)

	// Combiner returns the shared combiner, creating it lazily. Every caller
	// gets the same instance so the loader cache and memo are shared.
	Combiner() (*combiner.Combiner, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// DebounceInterval returns the minimum time between two watcher-triggered
	// recomputes.
	DebounceInterval() time.Duration

	// ShutdownTimeout bounds how long the watch command drains in-flight
	// recomputes after a signal.
	ShutdownTimeout() time.Duration

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
