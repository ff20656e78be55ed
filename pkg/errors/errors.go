// Package errors defines the typed errors returned across pricemap.
//
// Each type matches one of the package sentinels through errors.Is, or wraps
// an underlying cause reachable through errors.As and errors.Unwrap, so
// callers can branch on the kind of failure without string matching.
package errors

import (
	"errors"
	"fmt"
)

// New is errors.New, re-exported so callers need a single import.
var New = errors.New

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrCanceled     = errors.New("operation canceled")
	// ErrClosed reports use of a scheduler or watcher after shutdown.
	ErrClosed = errors.New("closed")
)

// NotFoundError names a missing category, vendor or file.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports a rejected registry entry, flag or config value.
// Value is kept for callers that want to echo the offending input.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return "validation failed for field " + e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// ConfigError wraps a failure to read or apply CLI configuration.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "configuration error: " + e.Message
	}
	return "configuration error in " + e.Component + ": " + e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ParseError reports a vendor file or registry document that failed to
// decode. Format is "json" or "yaml".
type ParseError struct {
	Format  string
	File    string
	Message string
	Err     error
}

func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return e.Format + " parse error: " + e.Message
	}
	return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError is a filesystem failure. Operation is one of read, write, create,
// rename or watch.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

func (e *IOError) Error() string {
	msg := "io " + e.Operation
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IOError) Unwrap() error { return e.Err }

// ResourceError is a failed operation on a named pricemap resource such as
// a category, the registry or the aggregate output.
type ResourceError struct {
	Operation string
	Resource  string
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	target := e.Resource
	if e.ID != "" {
		target += " " + e.ID
	}
	if e.Err == nil {
		return "failed to " + e.Operation + " " + target
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, target, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }
func IsCanceled(err error) bool        { return errors.Is(err, ErrCanceled) }
func IsClosed(err error) bool          { return errors.Is(err, ErrClosed) }

// The Wrap helpers return nil for a nil err so they can wrap a call's
// result directly.

func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
