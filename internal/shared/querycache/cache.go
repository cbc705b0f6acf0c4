// Package querycache is a keyed read-through cache with explicit staleness and
// revalidation policies. Concurrent loads of one key share a single fetch.
package querycache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// Trigger names why a revalidation was requested.
type Trigger string

const (
	TriggerOnDemand Trigger = "on-demand"
	TriggerFocus    Trigger = "focus"
)

// ParseTrigger maps a wire value to a Trigger; anything unknown is on-demand.
func ParseTrigger(raw string) Trigger {
	if Trigger(raw) == TriggerFocus {
		return TriggerFocus
	}
	return TriggerOnDemand
}

// Policy controls when a cached value is refetched.
type Policy struct {
	// StaleAfter is how long a fetched value is served without refetching. Zero means always stale.
	StaleAfter time.Duration
	// RevalidateOnFocus lets a focus trigger refetch the value.
	RevalidateOnFocus bool
}

// State is the load state of a key.
type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
)

// Snapshot is a non-blocking view of one key.
type Snapshot[T any] struct {
	State     State
	Value     T
	FetchedAt time.Time
	Stale     bool
	Err       error
}

// Fetcher loads the authoritative value for key.
type Fetcher[T any] func(ctx context.Context, key string) (T, error)

// Backend is an optional shared layer storing encoded values with a TTL.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	backend Backend
	now     func() time.Time
}

// WithBackend adds a shared backend consulted before fetching.
func WithBackend(b Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type entry[T any] struct {
	value     T
	fetchedAt time.Time
	loaded    bool
	err       error
}

// Cache holds one query's values keyed by string.
type Cache[T any] struct {
	name    string
	policy  Policy
	fetch   Fetcher[T]
	backend Backend
	now     func() time.Time

	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]*entry[T]
	gens    map[string]uint64
}

// New constructs a cache for the named query.
func New[T any](name string, policy Policy, fetch Fetcher[T], opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		name:    name,
		policy:  policy,
		fetch:   fetch,
		backend: o.backend,
		now:     o.now,
		entries: make(map[string]*entry[T]),
		gens:    make(map[string]uint64),
	}
}

// Name returns the query name the cache was registered under.
func (c *Cache[T]) Name() string { return c.name }

// Policy returns the cache policy.
func (c *Cache[T]) Policy() Policy { return c.policy }

// Get returns a fresh value, fetching when the key is missing or stale.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	loaded := ok && e.loaded
	if loaded && !c.isStale(e) {
		v := e.value
		c.mu.Unlock()
		metrics.IncCacheLookup(c.name, "hit")
		return v, nil
	}
	c.mu.Unlock()

	if loaded {
		metrics.IncCacheLookup(c.name, "stale")
	} else {
		metrics.IncCacheLookup(c.name, "miss")
		if v, found := c.loadBackend(ctx, key); found {
			return v, nil
		}
	}
	return c.wait(ctx, c.load(ctx, key))
}

// Peek reports the current state of key without fetching.
func (c *Cache[T]) Peek(key string) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.loaded {
		snap := Snapshot[T]{State: StateLoading}
		if ok {
			snap.Err = e.err
		}
		return snap
	}
	return Snapshot[T]{
		State:     StateLoaded,
		Value:     e.value,
		FetchedAt: e.fetchedAt,
		Stale:     c.isStale(e),
		Err:       e.err,
	}
}

// Prefetch starts a background load of key unless one is already running.
// The load outlives ctx cancellation.
func (c *Cache[T]) Prefetch(ctx context.Context, key string) {
	c.load(ctx, key)
}

// Revalidate refetches key for an on-demand trigger, or for a focus trigger
// when the policy allows it. It reports whether a fetch happened.
func (c *Cache[T]) Revalidate(ctx context.Context, key string, trigger Trigger) (bool, error) {
	if trigger == TriggerFocus && !c.policy.RevalidateOnFocus {
		return false, nil
	}
	_, err := c.wait(ctx, c.load(ctx, key))
	return true, err
}

// Set stores value for key as freshly fetched.
func (c *Cache[T]) Set(ctx context.Context, key string, value T) {
	c.mu.Lock()
	c.gens[key]++
	c.entries[key] = &entry[T]{value: value, fetchedAt: c.now(), loaded: true}
	c.mu.Unlock()
	c.group.Forget(key)
	c.storeBackend(ctx, key, value)
}

// Invalidate drops key so the next Get fetches. A fetch already in flight
// is not allowed to repopulate the entry.
func (c *Cache[T]) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	c.gens[key]++
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)
	if c.backend != nil {
		if err := c.backend.Delete(ctx, c.backendKey(key)); err != nil {
			telemetry.Warn("querycache.backend_delete_failed", map[string]any{"query": c.name, "error": err})
		}
	}
}

func (c *Cache[T]) isStale(e *entry[T]) bool {
	return c.now().Sub(e.fetchedAt) >= c.policy.StaleAfter
}

func (c *Cache[T]) load(ctx context.Context, key string) <-chan singleflight.Result {
	c.mu.Lock()
	gen := c.gens[key]
	c.mu.Unlock()
	bg := context.WithoutCancel(ctx)

	return c.group.DoChan(key, func() (any, error) {
		v, err := c.fetch(bg, key)
		c.mu.Lock()
		if c.gens[key] != gen {
			c.mu.Unlock()
			return v, err
		}
		if err != nil {
			e, ok := c.entries[key]
			if !ok {
				e = &entry[T]{}
				c.entries[key] = e
			}
			e.err = err
			c.mu.Unlock()
			return v, err
		}
		c.entries[key] = &entry[T]{value: v, fetchedAt: c.now(), loaded: true}
		c.mu.Unlock()
		c.storeBackend(bg, key, v)
		return v, nil
	})
}

func (c *Cache[T]) wait(ctx context.Context, ch <-chan singleflight.Result) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

func (c *Cache[T]) backendKey(key string) string {
	return c.name + ":" + key
}

func (c *Cache[T]) loadBackend(ctx context.Context, key string) (T, bool) {
	var zero T
	if c.backend == nil {
		return zero, false
	}
	raw, found, err := c.backend.Load(ctx, c.backendKey(key))
	if err != nil {
		telemetry.Warn("querycache.backend_load_failed", map[string]any{"query": c.name, "error": err})
		return zero, false
	}
	if !found {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		telemetry.Warn("querycache.backend_decode_failed", map[string]any{"query": c.name, "error": err})
		return zero, false
	}
	c.mu.Lock()
	c.entries[key] = &entry[T]{value: v, fetchedAt: c.now(), loaded: true}
	c.mu.Unlock()
	return v, true
}

func (c *Cache[T]) storeBackend(ctx context.Context, key string, value T) {
	if c.backend == nil || c.policy.StaleAfter <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		telemetry.Warn("querycache.backend_encode_failed", map[string]any{"query": c.name, "error": err})
		return
	}
	if err := c.backend.Store(ctx, c.backendKey(key), raw, c.policy.StaleAfter); err != nil {
		telemetry.Warn("querycache.backend_store_failed", map[string]any{"query": c.name, "error": err})
	}
}
