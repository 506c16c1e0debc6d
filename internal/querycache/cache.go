// ABOUTME: Shared query cache keyed by (operation, cluster, address).
// ABOUTME: Coalesces concurrent loads and lets mutations invalidate reads across accessors.
package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// Operation names for the journal read queries.
const (
	OpJournalAll        = "journal/all"
	OpJournalFetch      = "journal/fetch"
	OpGetProgramAccount = "get-program-account"
)

// DefaultTTL bounds how long a successful read is served without refetching.
const DefaultTTL = 30 * time.Second

// DefaultLoadTimeout bounds a shared load once it runs detached from its callers.
const DefaultLoadTimeout = 60 * time.Second

// Key identifies one cached query. Address is empty for collection-level reads.
type Key struct {
	Operation string
	Cluster   string
	Address   string
}

// String renders the key as operation/cluster[/address].
func (k Key) String() string {
	s := k.Operation + "/" + k.Cluster
	if k.Address != "" {
		s += "/" + k.Address
	}
	return s
}

// flightKey is the coalescing key. Parts are NUL-separated so names that
// contain "/" cannot collide with another key's rendering.
func (k Key) flightKey() string {
	return k.Operation + "\x00" + k.Cluster + "\x00" + k.Address
}

// Cache holds the last successful value per key. It is safe for concurrent use
// and meant to be shared by reference between every accessor of a process.
type Cache struct {
	items       *ttlcache.Cache[Key, any]
	group       singleflight.Group
	loadTimeout time.Duration

	mu          sync.Mutex
	generations map[Key]uint64
	listeners   []func(Key)
	running     bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithLoadTimeout bounds each shared load.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// New creates a cache whose entries expire after ttl. A zero ttl uses DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		items: ttlcache.New[Key, any](
			ttlcache.WithTTL[Key, any](ttl),
			ttlcache.WithDisableTouchOnHit[Key, any](),
		),
		loadTimeout: DefaultLoadTimeout,
		generations: make(map[Key]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start runs the expiry loop until Stop is called. Expired items are ignored by
// Fetch either way; the loop only reclaims memory.
func (c *Cache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	go c.items.Start()
}

// Stop halts the expiry loop. It is a no-op when the loop is not running.
func (c *Cache) Stop() {
	c.mu.Lock()
	running := c.running
	c.running = false
	c.mu.Unlock()
	if running {
		c.items.Stop()
	}
}

// Entry is a cached value with the time it was stored.
type Entry struct {
	Value     any
	FetchedAt time.Time
}

type stored struct {
	value     any
	fetchedAt time.Time
}

// Peek returns the cached entry for key without loading.
func (c *Cache) Peek(key Key) (Entry, bool) {
	item := c.items.Get(key)
	if item == nil {
		return Entry{}, false
	}
	s := item.Value().(stored)
	return Entry{Value: s.value, FetchedAt: s.fetchedAt}, true
}

// Fetch returns the cached value for key, or calls load and caches its result.
// Concurrent Fetch calls for one key share a single load. Failed loads are not
// cached. A load that was in flight when the key got invalidated returns its
// value to the caller but does not repopulate the cache.
//
// The shared load runs detached from every caller's cancellation, bounded by
// the load timeout. A caller whose ctx ends stops waiting with ctx.Err() while
// the load keeps running for the others.
func (c *Cache) Fetch(ctx context.Context, key Key, load func(context.Context) (any, error)) (Entry, error) {
	if e, ok := c.Peek(key); ok {
		return e, nil
	}

	gen := c.generation(key)
	ch := c.group.DoChan(key.flightKey(), func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		value, err := load(lctx)
		if err != nil {
			return nil, err
		}
		s := stored{value: value, fetchedAt: time.Now()}
		c.mu.Lock()
		if c.generations[key] == gen {
			c.items.Set(key, s, ttlcache.DefaultTTL)
		}
		c.mu.Unlock()
		return s, nil
	})

	select {
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Entry{}, res.Err
		}
		s := res.Val.(stored)
		return Entry{Value: s.value, FetchedAt: s.fetchedAt}, nil
	}
}

func (c *Cache) generation(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

// Invalidate drops key so the next Fetch reloads it, then notifies listeners.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	c.generations[key]++
	c.items.Delete(key)
	listeners := append([]func(Key){}, c.listeners...)
	c.mu.Unlock()

	c.group.Forget(key.flightKey())
	for _, fn := range listeners {
		fn(key)
	}
}

// InvalidateCluster drops every cached key in the cluster's namespace.
func (c *Cache) InvalidateCluster(cluster string) int {
	var n int
	for _, key := range c.items.Keys() {
		if key.Cluster == cluster {
			c.Invalidate(key)
			n++
		}
	}
	return n
}

// OnInvalidate registers fn to be called after every Invalidate.
func (c *Cache) OnInvalidate(fn func(Key)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Len reports the number of cached keys.
func (c *Cache) Len() int {
	return c.items.Len()
}
