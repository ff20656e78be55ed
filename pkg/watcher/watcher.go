// Package watcher turns filesystem changes to vendor files into scoped
// recomputes. An event is dropped when the file content did not change, when
// no category owns the file, or when it arrives within the debounce interval
// of the last triggered recompute. Surviving events schedule their category
// without blocking.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/agentstation/pricemap/pkg/constants"
	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/loader"
	"github.com/agentstation/pricemap/pkg/logging"
	"github.com/agentstation/pricemap/pkg/registry"
)

// Outcome is what Handle did with an event.
type Outcome int

const (
	// OutcomeIgnored means the path is not a vendor file.
	OutcomeIgnored Outcome = iota
	// OutcomeUnchanged means the file content matches the last known hash.
	OutcomeUnchanged
	// OutcomeUnowned means no category directory contains the file.
	OutcomeUnowned
	// OutcomeDebounced means a recompute was triggered too recently.
	OutcomeDebounced
	// OutcomeScheduled means a recompute of the owning category was queued.
	OutcomeScheduled
	// OutcomeCoalesced means a recompute of the owning category was already pending.
	OutcomeCoalesced
	// OutcomeClosed means the scheduler no longer accepts work.
	OutcomeClosed
)

// String returns the string representation of an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUnowned:
		return "unowned"
	case OutcomeDebounced:
		return "debounced"
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeCoalesced:
		return "coalesced"
	case OutcomeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Scheduler queues a recompute of a category without blocking. It reports
// false when the request was merged into one already pending.
type Scheduler interface {
	Schedule(category string) (bool, error)
}

// Watcher watches the category directories of a registry.
type Watcher struct {
	reg      *registry.Registry
	cache    *loader.Cache
	sched    Scheduler
	interval time.Duration
	debounce *rate.Sometimes
	ready    chan struct{}
}

// New creates a Watcher. interval is the minimum time between two triggered
// recomputes; a negative interval disables debouncing and zero selects
// constants.DefaultDebounceInterval.
func New(reg *registry.Registry, cache *loader.Cache, sched Scheduler, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = constants.DefaultDebounceInterval
	}
	return &Watcher{
		reg:      reg,
		cache:    cache,
		sched:    sched,
		interval: interval,
		debounce: &rate.Sometimes{Interval: interval},
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Run has attached to the category directories.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Handle processes a modification of path.
func (w *Watcher) Handle(ctx context.Context, path string) Outcome {
	if filepath.Ext(path) != constants.VendorFileExt || w.reg.IsOutput(path) {
		return OutcomeIgnored
	}

	logger := logging.FromContext(logging.WithPath(ctx, path))

	if !w.cache.Invalidate(path) {
		logger.Trace().Msg("Content unchanged")
		return OutcomeUnchanged
	}

	cat, ok := w.reg.Owner(path)
	if !ok {
		logger.Debug().Msg("No category owns path")
		return OutcomeUnowned
	}

	outcome := OutcomeDebounced
	trigger := func() {
		queued, err := w.sched.Schedule(cat.Name)
		switch {
		case err != nil:
			outcome = OutcomeClosed
		case queued:
			outcome = OutcomeScheduled
		default:
			outcome = OutcomeCoalesced
		}
	}
	if w.interval < 0 {
		trigger()
	} else {
		w.debounce.Do(trigger)
	}

	logger.Info().
		Str("category", cat.Name).
		Str("outcome", outcome.String()).
		Msg("Change detected")
	return outcome
}

// Run watches every existing category directory, non-recursively, until ctx
// is done. The underlying watcher is closed before Run returns. Run must be
// called at most once.
func (w *Watcher) Run(ctx context.Context) error {
	ctx = logging.WithOperation(ctx, "watch")
	logger := logging.FromContext(ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapResource("create", "watcher", "", err)
	}
	defer func() { _ = fw.Close() }()

	attached := 0
	for i := range w.reg.Categories {
		dir := w.reg.Dir(&w.reg.Categories[i])
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Warn().Str("dir", dir).Msg("Category directory missing, not watched")
			continue
		}
		if err := fw.Add(dir); err != nil {
			logger.Warn().Err(errors.WrapIO("watch", dir, err)).Msg("Cannot watch category directory")
			continue
		}
		attached++
	}
	logger.Info().Int("directories", attached).Msg("Watching for changes")
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Watcher stopped")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.Handle(ctx, event.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}
