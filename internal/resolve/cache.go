package resolve

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cached is a time-boxed memoization wrapper around one fact category.
// Concurrent callers during a cold or expired window share a single
// in-flight recomputation instead of spawning duplicate probe chains.
//
// A non-positive TTL caches the first successful value for the process
// lifetime. Failed recomputations are never memoized; the next call
// retries.
type Cached[T any] struct {
	ttl   time.Duration
	clock func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	value   T
	ok      bool
	fetched time.Time
}

// NewCached returns a cache entry with the given TTL.
func NewCached[T any](ttl time.Duration) *Cached[T] {
	return &Cached[T]{ttl: ttl, clock: time.Now}
}

// Get returns the cached value when fresh, otherwise recomputes it via
// fetch. At most one fetch runs at a time; waiters receive its result.
func (c *Cached[T]) Get(ctx context.Context, fetch func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.fresh(); ok {
		return v, nil
	}

	v, err, _ := c.group.Do("fetch", func() (any, error) {
		// A waiter that queued behind a successful fetch sees the
		// fresh value here instead of recomputing.
		if v, ok := c.fresh(); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.store(v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the cached value.
func (c *Cached[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.ok = false
}

func (c *Cached[T]) fresh() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ok {
		var zero T
		return zero, false
	}
	if c.ttl > 0 && c.clock().Sub(c.fetched) >= c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

func (c *Cached[T]) store(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	c.ok = true
	c.fetched = c.clock()
}
