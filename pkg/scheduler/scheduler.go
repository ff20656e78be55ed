// Package scheduler serializes recomputes per category. Each category gets
// one worker goroutine and a single pending slot: a request arriving while
// one is already pending is coalesced into it, and a request arriving while
// a recompute runs queues exactly one follow-up run.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/agentstation/pricemap/pkg/constants"
	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/logging"
)

// Task recomputes one category.
type Task func(ctx context.Context, category string) error

// Scheduler runs Tasks, at most one at a time per category.
type Scheduler struct {
	base    context.Context
	run     Task
	timeout time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	slots   map[string]chan struct{}
	pending int
	closed  bool

	done    chan struct{}
	workers conc.WaitGroup
}

// New creates a Scheduler. Runs inherit the values of ctx but not its
// cancellation, so a started recompute is never cut short by shutdown; each
// run is bounded by timeout instead (constants.RecomputeTimeout when zero).
func New(ctx context.Context, run Task, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = constants.RecomputeTimeout
	}
	s := &Scheduler{
		base:    context.WithoutCancel(ctx),
		run:     run,
		timeout: timeout,
		slots:   make(map[string]chan struct{}),
		done:    make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Schedule requests a recompute of category without blocking. It reports
// false when a request for the category was already pending and this one was
// coalesced into it. After Close it returns errors.ErrClosed.
func (s *Scheduler) Schedule(category string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, errors.ErrClosed
	}

	slot, ok := s.slots[category]
	if !ok {
		slot = make(chan struct{}, 1)
		s.slots[category] = slot
		s.workers.Go(func() { s.work(category, slot) })
	}

	select {
	case slot <- struct{}{}:
		s.pending++
		return true, nil
	default:
		return false, nil
	}
}

// Wait blocks until no recompute is pending or running.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.idle.Wait()
	}
}

// Close stops accepting requests, drops requests that have not started and
// waits for running recomputes to finish. It returns ctx.Err() if ctx ends
// first; the workers still finish in the background.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.workers.Wait()
		s.mu.Lock()
		s.pending = 0
		s.idle.Broadcast()
		s.mu.Unlock()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// work runs the recomputes of one category until Close.
func (s *Scheduler) work(category string, slot chan struct{}) {
	for {
		// Shutdown wins over a pending request.
		select {
		case <-s.done:
			return
		default:
		}

		select {
		case <-s.done:
			return
		case <-slot:
			s.execute(category)
			s.mu.Lock()
			s.pending--
			s.idle.Broadcast()
			s.mu.Unlock()
		}
	}
}

// execute runs one recompute, logging its error or panic.
func (s *Scheduler) execute(category string) {
	ctx, cancel := context.WithTimeout(logging.WithCategory(s.base, category), s.timeout)
	defer cancel()
	logger := logging.FromContext(ctx)

	var err error
	var catcher panics.Catcher
	catcher.Try(func() { err = s.run(ctx, category) })

	if r := catcher.Recovered(); r != nil {
		logger.Error().
			Str("panic", fmt.Sprint(r.Value)).
			Bytes("stack", r.Stack).
			Msg("Recompute panicked")
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("Recompute failed")
	}
}
