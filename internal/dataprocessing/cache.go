package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"vgpulse/internal/infrastructure"
)

// DatasetLoader is the loading contract the cache fills itself from
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*Dataset, error)
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Loads   int64 `json:"loads"`
}

// DatasetCache memoizes loaded datasets keyed by their resolved path.
// Concurrent misses for the same path share a single load and failed loads
// are not stored.
type DatasetCache struct {
	loader  DatasetLoader
	entries *cache.Cache
	group   singleflight.Group
	ttl     time.Duration
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	// mu orders stores against invalidation. generation changes on every
	// Invalidate or Flush so a load started before one is not stored.
	mu         sync.Mutex
	generation uint64

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewDatasetCache creates a cache in front of loader. A ttl of zero keeps
// entries until they are invalidated.
func NewDatasetCache(loader DatasetLoader, ttl time.Duration, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DatasetCache {
	expiry, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiry, cleanup = ttl, 0
	}

	return &DatasetCache{
		loader:  loader,
		entries: cache.New(expiry, cleanup),
		ttl:     expiry,
		logger:  infrastructure.WithComponent(logger, "dataset_cache"),
		metrics: metrics,
	}
}

// Key resolves the identity a path is cached under
func Key(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Get returns the dataset for path, loading it on a miss
func (c *DatasetCache) Get(ctx context.Context, path string) (*Dataset, error) {
	key := Key(path)

	if v, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		c.metrics.RecordCacheLookup(ctx, true)
		return v.(*Dataset), nil
	}
	c.misses.Add(1)
	c.metrics.RecordCacheLookup(ctx, false)

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// Another caller may have filled the entry while we waited to lead.
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}

		gen := c.currentGeneration()

		// The load outlives any single caller's cancellation.
		ds, err := c.loader.Load(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		c.loads.Add(1)
		if !c.store(key, ds, gen) {
			c.logger.DebugContext(ctx, "stale dataset load discarded", slog.String("path", key))
		}
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.logger.WarnContext(ctx, "dataset load failed",
				slog.String("path", key),
				slog.String("error", res.Err.Error()),
			)
			return nil, fmt.Errorf("load dataset: %w", res.Err)
		}
		if res.Shared {
			c.logger.DebugContext(ctx, "dataset load shared", slog.String("path", key))
		}
		return res.Val.(*Dataset), nil
	}
}

// Invalidate drops the entry for path so the next Get reloads it
func (c *DatasetCache) Invalidate(path string) {
	key := Key(path)
	c.mu.Lock()
	c.generation++
	c.entries.Delete(key)
	c.mu.Unlock()
	c.group.Forget(key)
	c.logger.Info("dataset cache entry invalidated", slog.String("path", key))
}

// Flush drops every entry
func (c *DatasetCache) Flush() {
	c.mu.Lock()
	c.generation++
	c.entries.Flush()
	c.mu.Unlock()
}

func (c *DatasetCache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// store caches ds unless the cache was invalidated after gen was read
func (c *DatasetCache) store(key string, ds *Dataset, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.entries.Set(key, ds, c.ttl)
	return true
}

// Stats returns hit, miss and load counters
func (c *DatasetCache) Stats() CacheStats {
	return CacheStats{
		Entries: c.entries.ItemCount(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Loads:   c.loads.Load(),
	}
}
