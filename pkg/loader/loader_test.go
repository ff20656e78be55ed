package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pricemap/pkg/loader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("bare list is normalized", func(t *testing.T) {
		path := filepath.Join(dir, "amazon.json")
		writeFile(t, path, `[{"title":"Dell XPS13-9310 13-inch","brand":"Dell"}]`)

		c := loader.New()
		list, status := c.Load(ctx, path)

		assert.Equal(t, loader.StatusLoaded, status)
		require.Len(t, list, 1)
		assert.Equal(t, "dell", list[0].BrandLower)
		assert.Equal(t, "xps13-9310", list[0].Model)
		assert.NotEmpty(t, c.Hash(path))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("products wrapper", func(t *testing.T) {
		path := filepath.Join(dir, "croma.json")
		writeFile(t, path, `{"products":[{"title":"a"},{"title":"b"}]}`)

		list, status := loader.New().Load(ctx, path)
		assert.Equal(t, loader.StatusLoaded, status)
		assert.Len(t, list, 2)
	})

	t.Run("missing file is empty", func(t *testing.T) {
		c := loader.New()
		list, status := c.Load(ctx, filepath.Join(dir, "nope.json"))

		assert.Equal(t, loader.StatusMissing, status)
		assert.Empty(t, list)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("unparsable file is empty", func(t *testing.T) {
		path := filepath.Join(dir, "jiomart.json")
		writeFile(t, path, `{"products": [`)

		c := loader.New()
		list, status := c.Load(ctx, path)

		assert.Equal(t, loader.StatusUnparsable, status)
		assert.Empty(t, list)
		assert.Equal(t, 0, c.Len())
	})
}

func TestLoadUsesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amazon.json")
	writeFile(t, path, `[{"title":"first"}]`)

	c := loader.New()
	first, _ := c.Load(context.Background(), path)

	// Without an invalidation the cached list is served even after the file changes.
	writeFile(t, path, `[{"title":"second"},{"title":"third"}]`)
	second, _ := c.Load(context.Background(), path)

	require.Len(t, second, 1)
	assert.Equal(t, first[0].Title, second[0].Title)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "amazon.json")
	writeFile(t, path, `[{"title":"first"}]`)

	c := loader.New()
	_, _ = c.Load(ctx, path)
	hash := c.Hash(path)

	t.Run("unchanged content keeps the cache", func(t *testing.T) {
		writeFile(t, path, `[{"title":"first"}]`)

		assert.False(t, c.Invalidate(path))
		assert.Equal(t, hash, c.Hash(path))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("changed content evicts and forces a re-parse", func(t *testing.T) {
		writeFile(t, path, `[{"title":"second"},{"title":"third"}]`)

		assert.True(t, c.Invalidate(path))
		assert.NotEqual(t, hash, c.Hash(path))
		assert.Equal(t, 0, c.Len())

		list, status := c.Load(ctx, path)
		assert.Equal(t, loader.StatusLoaded, status)
		require.Len(t, list, 2)
		assert.Equal(t, "second", list[0].Title)
	})

	t.Run("second event for the same content is dropped", func(t *testing.T) {
		assert.False(t, c.Invalidate(path))
	})

	t.Run("deleted file", func(t *testing.T) {
		require.NoError(t, os.Remove(path))

		assert.True(t, c.Invalidate(path))
		assert.Empty(t, c.Hash(path))
	})
}

func TestInvalidateUnknownPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flipkart.json")
	writeFile(t, path, `[]`)

	c := loader.New()
	assert.True(t, c.Invalidate(path), "a never-seen file counts as changed")
	assert.False(t, c.Invalidate(path))
}

func TestForget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amazon.json")
	writeFile(t, path, `[{"title":"x"}]`)

	c := loader.New()
	_, _ = c.Load(context.Background(), path)
	c.Forget(path)

	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Hash(path))
}

func TestConcurrentLoadAndInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "amazon.json")
	writeFile(t, path, `[{"title":"Dell XPS13-9310","brand":"Dell"}]`)

	c := loader.New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			list, status := c.Load(context.Background(), path)
			assert.Equal(t, loader.StatusLoaded, status)
			assert.Len(t, list, 1)
		}()
		go func() {
			defer wg.Done()
			c.Invalidate(path)
		}()
	}
	wg.Wait()
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	writeFile(t, a, `[1]`)
	writeFile(t, b, `[1]`)

	ha, err := loader.HashFile(a)
	require.NoError(t, err)
	hb, err := loader.HashFile(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)

	_, err = loader.HashFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "loaded", loader.StatusLoaded.String())
	assert.Equal(t, "missing", loader.StatusMissing.String())
	assert.Equal(t, "unparsable", loader.StatusUnparsable.String())
	assert.Equal(t, "unknown", loader.Status(9).String())
}
