// Package loader reads vendor files into normalized product lists and caches
// them by path together with the content hash of the file they came from.
//
// A missing or unparsable vendor file is never an error: it loads as an empty
// list and the returned Status says why.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/agentstation/pricemap/pkg/errors"
	"github.com/agentstation/pricemap/pkg/logging"
	"github.com/agentstation/pricemap/pkg/normalize"
	"github.com/agentstation/pricemap/pkg/products"
)

// Status describes the outcome of loading one vendor file.
type Status int

const (
	// StatusLoaded means the file was read and decoded.
	StatusLoaded Status = iota
	// StatusMissing means the file does not exist.
	StatusMissing
	// StatusUnparsable means the file exists but could not be read or decoded.
	StatusUnparsable
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusMissing:
		return "missing"
	case StatusUnparsable:
		return "unparsable"
	default:
		return "unknown"
	}
}

// Cache holds parsed vendor files keyed by path. It is safe for concurrent
// use. Lists returned by Load are shared and must be treated as read-only.
//
// mu guards bookkeeping only. Files are read and decoded without it so that
// Invalidate, called from the watcher's event loop, never waits on a parse.
type Cache struct {
	mu     sync.Mutex
	store  *gocache.Cache
	hashes map[string]string
	// gens counts evictions per path. A Load whose read straddles an
	// eviction discards what it read and starts over.
	gens map[string]uint64
}

// New creates an empty cache. Entries never expire; they are replaced only
// through Invalidate or Forget.
func New() *Cache {
	return &Cache{
		store:  gocache.New(gocache.NoExpiration, 0),
		hashes: make(map[string]string),
		gens:   make(map[string]uint64),
	}
}

// readFile is swapped in tests to hold a read open.
var readFile = os.ReadFile

// Load returns the normalized products of the vendor file at path, reading
// and decoding it only when no cached list exists.
func (c *Cache) Load(ctx context.Context, path string) ([]products.VendorProduct, Status) {
	logger := logging.FromContext(logging.WithPath(ctx, path))

	for {
		c.mu.Lock()
		if cached, found := c.store.Get(path); found {
			c.mu.Unlock()
			return cached.([]products.VendorProduct), StatusLoaded
		}
		gen := c.gens[path]
		c.mu.Unlock()

		list, hash, status := decodeFile(logger, path)

		c.mu.Lock()
		if c.gens[path] != gen {
			c.mu.Unlock()
			continue
		}
		if cached, found := c.store.Get(path); found {
			c.mu.Unlock()
			return cached.([]products.VendorProduct), StatusLoaded
		}
		switch {
		case status == StatusMissing:
			delete(c.hashes, path)
		case hash != "":
			c.hashes[path] = hash
		}
		if status == StatusLoaded {
			c.store.Set(path, list, gocache.NoExpiration)
		}
		c.mu.Unlock()

		if status == StatusLoaded {
			logger.Debug().Int("products", len(list)).Msg("Vendor file loaded")
		}
		return list, status
	}
}

// decodeFile reads, decodes and normalizes one vendor file. hash is set
// whenever the file could be read, even if it failed to decode.
func decodeFile(logger *zerolog.Logger, path string) (list []products.VendorProduct, hash string, status Status) {
	data, err := readFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Msg("Vendor file missing")
			return nil, "", StatusMissing
		}
		logger.Warn().Err(errors.WrapIO("read", path, err)).Msg("Vendor file unreadable")
		return nil, "", StatusUnparsable
	}
	hash = hashBytes(data)

	list, err = products.DecodeList(data)
	if err != nil {
		logger.Warn().Err(errors.WrapParse("json", path, err)).Msg("Vendor file unparsable")
		return nil, hash, StatusUnparsable
	}
	normalize.ApplyAll(list)
	return list, hash, StatusLoaded
}

// Invalidate reconciles the cache with the current content of path. It
// reports true when the content differs from the last load (or was never
// loaded), in which case the cached list is evicted and the new hash
// recorded. An unchanged file keeps its cached list.
func (c *Cache) Invalidate(path string) bool {
	current, _ := HashFile(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if known, ok := c.hashes[path]; ok && known == current {
		return false
	}

	c.store.Delete(path)
	c.gens[path]++
	if current == "" {
		delete(c.hashes, path)
	} else {
		c.hashes[path] = current
	}
	return true
}

// Hash returns the content hash recorded for path by the last Load or
// Invalidate, or "" when none is known.
func (c *Cache) Hash(path string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hashes[path]
}

// Forget drops everything cached for path.
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(path)
	c.gens[path]++
	delete(c.hashes, path)
}

// Len returns the number of cached product lists.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return hashBytes(data), nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
