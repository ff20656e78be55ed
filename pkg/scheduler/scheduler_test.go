package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmerrors "github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/logging"
	"github.com/agentstation/pricemap/pkg/scheduler"
)

// gate lets a test hold a task inside its run.
type gate struct {
	started chan string
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan string, 16), release: make(chan struct{})}
}

func (g *gate) task(runs *atomic.Int32) scheduler.Task {
	return func(ctx context.Context, category string) error {
		runs.Add(1)
		g.started <- category
		<-g.release
		return nil
	}
}

func waitStarted(t *testing.T, g *gate) string {
	t.Helper()
	select {
	case c := <-g.started:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("task did not start")
		return ""
	}
}

func closeScheduler(t *testing.T, s *scheduler.Scheduler) {
	t.Helper()
	require.NoError(t, s.Close(context.Background()))
}

func TestScheduleRunsTask(t *testing.T) {
	var runs atomic.Int32
	var got []string
	var mu sync.Mutex

	s := scheduler.New(context.Background(), func(ctx context.Context, category string) error {
		runs.Add(1)
		mu.Lock()
		got = append(got, category)
		mu.Unlock()
		return nil
	}, time.Minute)
	defer closeScheduler(t, s)

	queued, err := s.Schedule("laptop")
	require.NoError(t, err)
	assert.True(t, queued)

	s.Wait()
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, []string{"laptop"}, got)
}

func TestScheduleCoalescesBursts(t *testing.T) {
	var runs atomic.Int32
	g := newGate()
	s := scheduler.New(context.Background(), g.task(&runs), time.Minute)
	defer closeScheduler(t, s)

	queued, err := s.Schedule("laptop")
	require.NoError(t, err)
	require.True(t, queued)
	waitStarted(t, g)

	// One follow-up run is queued behind the running one; the rest coalesce.
	queued, _ = s.Schedule("laptop")
	assert.True(t, queued)
	for i := 0; i < 5; i++ {
		queued, _ = s.Schedule("laptop")
		assert.False(t, queued)
	}

	close(g.release)
	s.Wait()
	assert.Equal(t, int32(2), runs.Load())
}

func TestCategoriesRunIndependently(t *testing.T) {
	var runs atomic.Int32
	g := newGate()
	s := scheduler.New(context.Background(), g.task(&runs), time.Minute)
	defer closeScheduler(t, s)

	_, err := s.Schedule("laptop")
	require.NoError(t, err)
	_, err = s.Schedule("mobiles")
	require.NoError(t, err)

	started := []string{waitStarted(t, g), waitStarted(t, g)}
	assert.ElementsMatch(t, []string{"laptop", "mobiles"}, started)

	close(g.release)
	s.Wait()
	assert.Equal(t, int32(2), runs.Load())
}

func TestSameCategoryNeverOverlaps(t *testing.T) {
	var active, maxActive atomic.Int32
	s := scheduler.New(context.Background(), func(ctx context.Context, category string) error {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return nil
	}, time.Minute)
	defer closeScheduler(t, s)

	for i := 0; i < 50; i++ {
		_, err := s.Schedule("laptop")
		require.NoError(t, err)
		time.Sleep(100 * time.Microsecond)
	}
	s.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

func TestTaskErrorsAndPanicsAreLogged(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	var calls atomic.Int32
	s := scheduler.New(ctx, func(ctx context.Context, category string) error {
		switch calls.Add(1) {
		case 1:
			panic("boom")
		case 2:
			return errors.New("disk full")
		default:
			return nil
		}
	}, time.Minute)
	defer closeScheduler(t, s)

	for i := 0; i < 3; i++ {
		_, err := s.Schedule("laptop")
		require.NoError(t, err)
		s.Wait()
	}

	assert.Equal(t, int32(3), calls.Load(), "the worker survives a panic")
	tl.AssertContains(t, "Recompute panicked")
	tl.AssertContains(t, "boom")
	tl.AssertContains(t, "Recompute failed")
	tl.AssertContains(t, "disk full")
	tl.AssertContains(t, `"category":"laptop"`)
}

func TestRunsOutliveParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runErr error
	s := scheduler.New(ctx, func(ctx context.Context, category string) error {
		runErr = ctx.Err()
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}, time.Minute)
	defer closeScheduler(t, s)

	cancel()
	_, err := s.Schedule("laptop")
	require.NoError(t, err)
	s.Wait()

	assert.NoError(t, runErr)
}

func TestCloseWaitsForInFlight(t *testing.T) {
	var runs atomic.Int32
	g := newGate()
	s := scheduler.New(context.Background(), g.task(&runs), time.Minute)

	_, err := s.Schedule("laptop")
	require.NoError(t, err)
	waitStarted(t, g)

	closed := make(chan error, 1)
	go func() { closed <- s.Close(context.Background()) }()

	select {
	case <-closed:
		t.Fatal("Close returned while a recompute was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(g.release)
	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	_, err = s.Schedule("laptop")
	assert.True(t, pmerrors.IsClosed(err))
	assert.NoError(t, s.Close(context.Background()), "Close is idempotent")
	s.Wait()
}

func TestCloseTimeout(t *testing.T) {
	var runs atomic.Int32
	g := newGate()
	s := scheduler.New(context.Background(), g.task(&runs), time.Minute)

	_, err := s.Schedule("laptop")
	require.NoError(t, err)
	waitStarted(t, g)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Close(ctx), context.DeadlineExceeded)

	close(g.release)
}

func TestDefaultTimeout(t *testing.T) {
	var deadline time.Time
	s := scheduler.New(context.Background(), func(ctx context.Context, category string) error {
		deadline, _ = ctx.Deadline()
		return nil
	}, 0)
	defer closeScheduler(t, s)

	_, err := s.Schedule("laptop")
	require.NoError(t, err)
	s.Wait()

	assert.WithinDuration(t, time.Now().Add(5*time.Minute), deadline, time.Minute)
}
