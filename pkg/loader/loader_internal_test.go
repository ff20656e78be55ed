package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// holdFirstRead makes the next read return the file's current content only
// after release is closed. Later reads go straight to disk.
func holdFirstRead(t *testing.T) (started, release chan struct{}) {
	t.Helper()
	started = make(chan struct{})
	release = make(chan struct{})

	var once sync.Once
	orig := readFile
	readFile = func(path string) ([]byte, error) {
		held := false
		once.Do(func() { held = true })
		if !held {
			return orig(path)
		}
		data, err := orig(path)
		close(started)
		<-release
		return data, err
	}
	t.Cleanup(func() { readFile = orig })
	return started, release
}

func TestInvalidateDoesNotWaitForLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "croma.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"first"}]`), 0o644))

	started, release := holdFirstRead(t)
	c := New()

	loaded := make(chan string, 1)
	go func() {
		list, status := c.Load(context.Background(), path)
		if status == StatusLoaded && len(list) == 1 {
			loaded <- list[0].Title
			return
		}
		loaded <- ""
	}()
	<-started

	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"second"}]`), 0o644))

	invalidated := make(chan bool, 1)
	go func() { invalidated <- c.Invalidate(path) }()
	select {
	case changed := <-invalidated:
		assert.True(t, changed)
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("Invalidate blocked behind an in-flight Load")
	}

	close(release)

	// The held read saw stale content; Load must retry rather than cache it.
	select {
	case title := <-loaded:
		assert.Equal(t, "second", title)
	case <-time.After(2 * time.Second):
		t.Fatal("Load did not return")
	}

	hash, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hash, c.Hash(path))
}
