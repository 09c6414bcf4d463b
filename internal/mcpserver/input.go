package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/oaslint/internal/options"
	"github.com/erraggy/oaslint/rules"
)

// sourceInput represents the three ways a document or rule catalog can be
// provided to a tool. Exactly one of File, URL, or Content must be set.
type sourceInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a file on disk"`
	URL     string `json:"url,omitempty"     jsonschema:"URL to fetch the document from"`
	Content string `json:"content,omitempty" jsonschema:"Inline content (JSON or YAML; catalogs may also be TOML)"`
}

func (s sourceInput) check() error {
	if err := options.ValidateSingleInputSource(
		"exactly one of file, url, or content must be provided (got none)",
		"exactly one of file, url, or content must be provided (got several)",
		s.File != "", s.URL != "", s.Content != "",
	); err != nil {
		return err
	}
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set OASLINT_MCP_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}
	return nil
}

// text returns the raw content from whichever input was provided.
func (s sourceInput) text(ctx context.Context) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	switch {
	case s.File != "":
		data, err := os.ReadFile(s.File)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case s.URL != "":
		data, err := fetch(ctx, s.URL)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return s.Content, nil
	}
}

// catalog decodes and validates a rule catalog, using the cache for all
// three input kinds.
func (s sourceInput) catalog(ctx context.Context) (rules.Catalog, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	var key string
	var ttl time.Duration
	if cfg.CacheEnabled {
		key = makeCacheKey(s)
		switch {
		case s.File != "":
			ttl = cfg.CacheFileTTL
		case s.URL != "":
			ttl = cfg.CacheURLTTL
		default:
			ttl = cfg.CacheContentTTL
		}
	}
	if key != "" {
		if cached, ok := catalogCache.get(key); ok {
			return cached, nil
		}
	}

	raw, err := s.text(ctx)
	if err != nil {
		return nil, err
	}
	format := rules.FormatUnknown
	if s.File != "" {
		format = rules.FormatFromPath(s.File)
	}
	c, err := rules.Decode([]byte(raw), format)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if key != "" {
		catalogCache.putWithTTL(key, c, ttl)
	}
	return c, nil
}

// makeCacheKey creates a cache key for the given input. File inputs are keyed
// by (absolutePath, modTime), content by a SHA-256 hash and URLs by the URL.
func makeCacheKey(s sourceInput) string {
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		return fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		return "content:" + hex.EncodeToString(h[:])
	case s.URL != "":
		return "url:" + s.URL
	default:
		return ""
	}
}

// cacheEntry holds a cached value with LRU ordering and TTL expiry.
type cacheEntry[V any] struct {
	value     V
	lastUsed  time.Time
	expiresAt time.Time
}

// ttlCache is a session-scoped LRU cache with per-entry TTLs.
// A background sweeper removes expired entries.
type ttlCache[V any] struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry[V]
	maxSize        int
	sweeperStarted atomic.Bool
}

func newTTLCache[V any](maxSize int) *ttlCache[V] {
	return &ttlCache[V]{entries: make(map[string]*cacheEntry[V]), maxSize: maxSize}
}

var catalogCache = newTTLCache[rules.Catalog](cfg.CacheMaxSize)

// get returns a cached value. Expired entries are lazily removed.
func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	e.lastUsed = time.Now()
	return e.value, true
}

// putWithTTL stores a value, evicting the least recently used entry if at capacity.
func (c *ttlCache[V]) putWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry[V]{value: value, lastUsed: now, expiresAt: now.Add(ttl)}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}
	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.lastUsed.Before(oldest) {
				oldestKey, oldest = k, e.lastUsed
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry
}

// sweep removes all expired entries.
func (c *ttlCache[V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a goroutine that periodically removes expired
// entries until ctx is cancelled. Only the first call spawns a sweeper.
func (c *ttlCache[V]) startSweeper(ctx context.Context, interval time.Duration) {
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
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *ttlCache[V]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry[V])
}

// size returns the number of cached entries.
func (c *ttlCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
