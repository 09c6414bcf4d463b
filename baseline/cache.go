package baseline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/erraggy/oaslint/document"
)

// Cache defaults.
const (
	// DefaultMaxEntries bounds a Cache built without WithMaxEntries.
	DefaultMaxEntries = 32
	// DefaultTTL is the expiry used by callers that do not pick their own.
	DefaultTTL = 15 * time.Minute
	// DefaultFetchTimeout bounds one shared fetch from the wrapped Source.
	DefaultFetchTimeout = 30 * time.Second
)

// cacheEntry holds a fetched baseline with LRU ordering and TTL expiry.
type cacheEntry struct {
	doc       *document.Document
	lastUsed  time.Time
	expiresAt time.Time
}

// Cache is a bounded Source wrapper keyed by baseline id. Entries are
// evicted least-recently-used when the cache is full and lazily dropped once
// their TTL passes. Stored documents are shared read-only between callers.
// Unavailable baselines are not cached.
type Cache struct {
	src          Source
	ttl          time.Duration
	maxSize      int
	fetchTimeout time.Duration
	now          func() time.Time

	mu             sync.Mutex
	entries        map[string]*cacheEntry
	group          singleflight.Group
	sweeperStarted atomic.Bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets how long an entry stays valid. Zero means no expiry.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithMaxEntries bounds the number of cached documents.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithFetchTimeout bounds each fetch from the wrapped Source. The bound
// belongs to the cache, not to any caller.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// withClock replaces time.Now, for tests.
func withClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache wraps src.
func NewCache(src Source, opts ...CacheOption) *Cache {
	c := &Cache{
		src:          src,
		maxSize:      DefaultMaxEntries,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		entries:      make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Baseline implements Source. Concurrent misses for the same id share one
// fetch. The fetch runs detached from any single caller's cancellation and
// is bounded by the cache's fetch timeout; each caller stops waiting when
// its own ctx is done.
func (c *Cache) Baseline(ctx context.Context, id string) (*document.Document, error) {
	if doc := c.get(id); doc != nil {
		return doc, nil
	}
	ch := c.group.DoChan(id, func() (any, error) {
		if doc := c.get(id); doc != nil {
			return doc, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		doc, err := c.src.Baseline(fetchCtx, id)
		if err != nil || doc == nil {
			return nil, err
		}
		c.put(id, doc)
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		doc, _ := res.Val.(*document.Document)
		return doc, nil
	}
}

// get returns a cached document or nil. Expired entries are lazily removed.
func (c *Cache) get(id string) *document.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	now := c.now()
	if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
		delete(c.entries, id)
		return nil
	}
	e.lastUsed = now
	return e.doc
}

// put stores doc, evicting the least recently used entry if at capacity.
func (c *Cache) put(id string, doc *document.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := &cacheEntry{doc: doc, lastUsed: now}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
	}

	if _, ok := c.entries[id]; !ok && len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.lastUsed.Before(oldest) {
				oldestKey = k
				oldest = e.lastUsed
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[id] = entry
}

// Sweep removes all expired entries.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// StartSweeper launches a goroutine that calls Sweep every interval until
// ctx is cancelled. Only the first call starts a sweeper.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
