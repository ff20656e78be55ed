package combiner

import (
	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/loader"
)

// options configures a Combiner.
type options struct {
	cache *loader.Cache
	memo  bool
}

func defaultOptions() *options {
	return &options{
		memo: true,
	}
}

// Option is a function that configures a Combiner.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.cache == nil {
		o.cache = loader.New()
	}
	return o, nil
}

// newOptions returns combiner options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithCache shares a loader cache with the combiner, typically the one the
// watcher invalidates.
func WithCache(cache *loader.Cache) Option {
	return func(o *options) error {
		if cache == nil {
			return &errors.ValidationError{
				Field:   "cache",
				Message: "cannot be nil",
			}
		}
		o.cache = cache
		return nil
	}
}

// WithMemo enables or disables reuse of a category's previous products when
// none of its input files changed. Enabled by default.
func WithMemo(enabled bool) Option {
	return func(o *options) error {
		o.memo = enabled
		return nil
	}
}
