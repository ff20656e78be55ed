package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger stores logger on ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored on ctx, falling back to Default.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(loggerKey{}).(*zerolog.Logger); l != nil {
			return l
		}
	}
	return Default()
}

// Ctx is shorthand for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithFields returns a context whose logger carries fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	l := FromContext(ctx).With().Fields(fields).Logger()
	return WithLogger(ctx, &l)
}

// WithField returns a context whose logger carries key=value.
func WithField(ctx context.Context, key string, value any) context.Context {
	return WithFields(ctx, map[string]any{key: value})
}

func WithCategory(ctx context.Context, category string) context.Context {
	return WithField(ctx, "category", category)
}

func WithVendor(ctx context.Context, vendor string) context.Context {
	return WithField(ctx, "vendor", vendor)
}

func WithPath(ctx context.Context, path string) context.Context {
	return WithField(ctx, "path", path)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}
