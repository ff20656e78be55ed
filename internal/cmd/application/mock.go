// Package application provides a mock of the command application interface.
package application

import (
	"time"

	"github.com/rs/zerolog"

	cmdapp "github.com/agentstation/pricemap/cmd/application"
	"github.com/agentstation/pricemap/pkg/combiner"
	"github.com/agentstation/pricemap/pkg/registry"
)

// Mock provides a mock implementation of cmdapp.Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Combiner defaults to a combiner built lazily over Registry, shared across
// calls like the real application's.
type Mock struct {
	RegistryFunc         func() (*registry.Registry, error)
	CombinerFunc         func() (*combiner.Combiner, error)
	LoggerFunc           func() *zerolog.Logger
	OutputFormatFunc     func() string
	DebounceIntervalFunc func() time.Duration
	ShutdownTimeoutFunc  func() time.Duration
	VersionFunc          func() string
	CommitFunc           func() string
	DateFunc             func() string
	BuiltByFunc          func() string

	combiner *combiner.Combiner
}

// Registry returns a registry using the mock function or the default registry.
func (m *Mock) Registry() (*registry.Registry, error) {
	if m.RegistryFunc != nil {
		return m.RegistryFunc()
	}
	return registry.Default(""), nil
}

// Combiner returns a combiner using the mock function or one built over Registry.
func (m *Mock) Combiner() (*combiner.Combiner, error) {
	if m.CombinerFunc != nil {
		return m.CombinerFunc()
	}
	if m.combiner != nil {
		return m.combiner, nil
	}
	reg, err := m.Registry()
	if err != nil {
		return nil, err
	}
	c, err := combiner.New(reg)
	if err != nil {
		return nil, err
	}
	m.combiner = c
	return c, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// DebounceInterval returns the interval using the mock function or zero.
func (m *Mock) DebounceInterval() time.Duration {
	if m.DebounceIntervalFunc != nil {
		return m.DebounceIntervalFunc()
	}
	return 0
}

// ShutdownTimeout returns the timeout using the mock function or one second.
func (m *Mock) ShutdownTimeout() time.Duration {
	if m.ShutdownTimeoutFunc != nil {
		return m.ShutdownTimeoutFunc()
	}
	return time.Second
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ cmdapp.Application = (*Mock)(nil)
