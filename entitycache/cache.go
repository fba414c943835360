// Package entitycache provides the time-boxed read-through cache sitting in
// front of remote entity list fetches.
//
// A cache entry is valid only while now - fetchedAt < TTL. Mutation paths
// clear the entry unconditionally rather than patching it in place: partial
// patching risks diverging from server-computed defaults, and one extra
// round trip is cheaper than being subtly wrong under concurrent writers.
package entitycache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Fetcher performs the underlying remote list fetch.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Recorder receives cache observability events.
// Implementations: metrics/ (prometheus), or nil for none.
type Recorder interface {
	RecordCacheHit(kind string)
	RecordCacheMiss(kind string)
	RecordCacheInvalidation(kind string)
	SetCacheSize(kind string, size float64)
}

// Cache is a read-through cache for one entity kind's list.
type Cache[T any] struct {
	kind     string
	ttl      time.Duration
	fetch    Fetcher[T]
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time

	mu        sync.Mutex
	records   []T
	fetchedAt time.Time
	valid     bool
	gen       uint64

	sf singleflight.Group
}

// Option configures the Cache.
type Option[T any] func(*Cache[T])

// WithLogger sets a structured logger.
func WithLogger[T any](l *slog.Logger) Option[T] {
	return func(c *Cache[T]) { c.logger = l }
}

// WithRecorder sets the observability recorder.
func WithRecorder[T any](r Recorder) Option[T] {
	return func(c *Cache[T]) { c.recorder = r }
}

// WithClock overrides the time source. Used by tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) { c.now = now }
}

// New creates a cache for one entity kind. kind names the cache in logs and
// metrics; ttl is the maximum entry age.
func New[T any](kind string, ttl time.Duration, fetch Fetcher[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		kind:   kind,
		ttl:    ttl,
		fetch:  fetch,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached sequence while the entry is fresh, otherwise
// performs the remote fetch, replaces the entry, and returns the new
// sequence. Concurrent refreshes for the same cache collapse into a single
// fetch. The cache is left untouched when the fetch fails.
func (c *Cache[T]) Get(ctx context.Context, forceRefresh bool) ([]T, error) {
	c.mu.Lock()
	if !forceRefresh && c.fresh() {
		records := c.records
		c.mu.Unlock()
		if c.recorder != nil {
			c.recorder.RecordCacheHit(c.kind)
		}
		return records, nil
	}
	gen := c.gen
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.RecordCacheMiss(c.kind)
	}

	// singleflight collapses duplicate in-flight fetches. A forcing caller
	// must not join a fetch that started before its request, so it detaches
	// any in-flight call first.
	if forceRefresh {
		c.sf.Forget("fetch")
	}
	result, err, _ := c.sf.Do("fetch", func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}

	records := result.([]T)
	c.mu.Lock()
	if c.gen != gen {
		// Invalidated while the fetch was in flight: the result predates
		// the write, committing it would resurrect the cleared entry. The
		// caller still gets the data it fetched; the cache stays cold.
		c.mu.Unlock()
		c.logger.Debug("discarding fetch superseded by invalidation", "kind", c.kind)
		return records, nil
	}
	c.records = records
	c.fetchedAt = c.now()
	c.valid = true
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.SetCacheSize(c.kind, float64(len(records)))
	}
	return records, nil
}

// Peek returns the cached sequence only if the entry is warm. It never
// fetches. Derived reads use it to filter in-process instead of querying
// remotely.
func (c *Cache[T]) Peek() ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fresh() {
		return nil, false
	}
	return c.records, true
}

// Invalidate clears the entry unconditionally.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.fetchedAt = time.Time{}
	c.valid = false
	c.gen++ // marks in-flight fetches stale so they cannot recommit
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.RecordCacheInvalidation(c.kind)
		c.recorder.SetCacheSize(c.kind, 0)
	}
	c.logger.Debug("cache invalidated", "kind", c.kind)
}

// fresh reports entry validity. Callers hold c.mu.
// An empty fetched list is a valid entry; only Invalidate clears validity.
func (c *Cache[T]) fresh() bool {
	return c.valid && c.now().Sub(c.fetchedAt) < c.ttl
}
