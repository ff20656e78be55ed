package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger is a trace-level JSON logger that records what it writes.
// Watcher and scheduler goroutines may log to it concurrently.
type TestLogger struct {
	*zerolog.Logger

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewTestLogger returns a capturing logger and lowers zerolog's global level
// to trace until the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	tl := &TestLogger{}
	l := zerolog.New(writerFunc(tl.write)).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	tl.Logger = &l
	return tl
}

// CaptureLoggingForTest installs a TestLogger as the default logger for the
// duration of the test.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()

	prev := *Default()
	tl := NewTestLogger(t)
	SetDefault(*tl.Logger)
	t.Cleanup(func() { SetDefault(prev) })
	return tl
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func (tl *TestLogger) write(p []byte) (int, error) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buf.Write(p)
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.buf.String()
}

// Clear discards the captured output.
func (tl *TestLogger) Clear() {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.buf.Reset()
}

// Count returns the number of captured entries, one per line.
func (tl *TestLogger) Count() int {
	out := strings.TrimSpace(tl.Output())
	if out == "" {
		return 0
	}
	return strings.Count(out, "\n") + 1
}

func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

func (tl *TestLogger) ContainsAll(substrs ...string) bool {
	out := tl.Output()
	for _, s := range substrs {
		if !strings.Contains(out, s) {
			return false
		}
	}
	return true
}

func (tl *TestLogger) ContainsAny(substrs ...string) bool {
	out := tl.Output()
	for _, s := range substrs {
		if strings.Contains(out, s) {
			return true
		}
	}
	return false
}

func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("log missing %q\n%s", substr, tl.Output())
	}
}

func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if tl.Contains(substr) {
		t.Errorf("log unexpectedly contains %q\n%s", substr, tl.Output())
	}
}

func (tl *TestLogger) AssertCount(t testing.TB, want int) {
	t.Helper()
	if got := tl.Count(); got != want {
		t.Errorf("got %d log entries, want %d\n%s", got, want, tl.Output())
	}
}
