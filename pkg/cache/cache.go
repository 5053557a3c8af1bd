package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultFreshWindow is how long an entry is served without revalidation.
	DefaultFreshWindow = 5 * time.Minute

	// DefaultStaleWindow is how long an entry is served at all.
	DefaultStaleWindow = 10 * time.Minute
)

// Cache is a process-wide response cache with fresh and stale windows.
// Construct one per application and pass it to the components that read
// and fill it. All methods are safe for concurrent use and never fail.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]Entry
	freshFor time.Duration
	staleFor time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	// group collapses concurrent fetches for the same key
	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithWindows overrides the fresh and stale windows.
// The stale window is raised to the fresh window if it is shorter.
func WithWindows(fresh, stale time.Duration) Option {
	return func(c *Cache) {
		if fresh > 0 {
			c.freshFor = fresh
		}
		if stale > 0 {
			c.staleFor = stale
		}
		if c.staleFor < c.freshFor {
			c.staleFor = c.freshFor
		}
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[string]Entry),
		freshFor: DefaultFreshWindow,
		staleFor: DefaultStaleWindow,
		now:      time.Now,
		logger:   log.With().Str("component", "response-cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key while it is fresh or stale.
// Entries past the stale window are evicted and reported absent.
func (c *Cache) Get(key string) (any, bool) {
	entry, freshness := c.Lookup(key)
	if freshness == Miss {
		return nil, false
	}
	return entry.Data, true
}

// Lookup returns the entry for key together with its freshness.
func (c *Cache) Lookup(key string) (Entry, Freshness) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		CacheMisses.Inc()
		c.logger.Debug().Str("key", key).Msg("Cache miss")
		return Entry{}, Miss
	}

	freshness := entry.freshness(c.now(), c.freshFor, c.staleFor)
	if freshness == Miss {
		delete(c.entries, key)
		CacheEvictions.WithLabelValues("expired").Inc()
		CacheEntries.Set(float64(len(c.entries)))
		CacheMisses.Inc()
		c.logger.Debug().Str("key", key).Msg("Cache entry expired")
		return Entry{}, Miss
	}

	CacheHits.WithLabelValues(freshness.String()).Inc()
	c.logger.Debug().
		Str("key", key).
		Str("freshness", freshness.String()).
		Msg("Cache hit")
	return entry, freshness
}

// Set stores data under key, replacing any existing entry.
func (c *Cache) Set(key string, data any) {
	c.SetWithETag(key, data, "")
}

// SetWithETag stores data under key together with the response ETag.
func (c *Cache) SetWithETag(key string, data any, etag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		Data:      data,
		Timestamp: c.now(),
		ETag:      etag,
	}
	CacheEntries.Set(float64(len(c.entries)))
	c.logger.Debug().Str("key", key).Str("etag", etag).Msg("Cached response")
}

// Touch restamps the entry under key with the current time, keeping its data
// and ETag. It reports false when there is no entry to restamp.
func (c *Cache) Touch(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	entry = Entry{Data: entry.Data, Timestamp: c.now(), ETag: entry.ETag}
	c.entries[key] = entry
	return entry, true
}

// Invalidate removes every entry whose key contains pattern and returns the
// number of removed entries.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		CacheEvictions.WithLabelValues("invalidated").Add(float64(removed))
		CacheEntries.Set(float64(len(c.entries)))
	}
	c.logger.Debug().Str("pattern", pattern).Int("removed", removed).Msg("Cache invalidated")
	return removed
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := len(c.entries); n > 0 {
		CacheEvictions.WithLabelValues("cleared").Add(float64(n))
	}
	c.entries = make(map[string]Entry)
	CacheEntries.Set(0)
}

// Reset clears the cache. It exists so tests can isolate a shared instance.
func (c *Cache) Reset() {
	c.Clear()
}

// Len returns the number of stored entries, including expired ones that
// have not been read since they expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// peek returns the raw entry without freshness checks or metrics.
func (c *Cache) peek(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry, ok
}
