// Package categories caches the backend's category list and keeps it fresh
// on a schedule.
package categories

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/donaldgifford/catalog-browser/internal/metrics"
)

// DefaultTTL is how long a fetched category list is served without
// refetching.
const DefaultTTL = 5 * time.Minute

// Source lists category names.
type Source interface {
	ListCategories(ctx context.Context) ([]string, error)
}

// Cache holds the most recent category list. A failed refresh keeps the
// previous list.
type Cache struct {
	src     Source
	ttl     time.Duration
	nowFunc func() time.Time
	log     *slog.Logger

	mu        sync.RWMutex
	names     []string
	fetchedAt time.Time
	loaded    bool
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) CacheOption {
	return func(c *Cache) { c.nowFunc = f }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) CacheOption {
	return func(c *Cache) { c.log = log }
}

// NewCache returns an empty cache backed by src. A ttl of zero or less uses
// DefaultTTL.
func NewCache(src Source, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		src:     src,
		ttl:     ttl,
		nowFunc: time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached list, refreshing it first when it is missing or
// older than the TTL.
func (c *Cache) Get(ctx context.Context) ([]string, error) {
	if names, fresh := c.Cached(); fresh {
		return names, nil
	}
	return c.Refresh(ctx)
}

// Cached returns the current list without fetching and whether it is
// within the TTL.
func (c *Cache) Cached() (names []string, fresh bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.names), c.nowFunc().Sub(c.fetchedAt) < c.ttl
}

// Refresh fetches the list from the source unconditionally. Names are
// sorted and deduplicated.
func (c *Cache) Refresh(ctx context.Context) ([]string, error) {
	metrics.CategoryRefreshesTotal.Inc()

	names, err := c.src.ListCategories(ctx)
	if err != nil {
		metrics.CategoryRefreshFailuresTotal.Inc()
		return nil, fmt.Errorf("refreshing categories: %w", err)
	}

	names = slices.Clone(names)
	slices.Sort(names)
	names = slices.Compact(names)

	c.mu.Lock()
	c.names = names
	c.fetchedAt = c.nowFunc()
	c.loaded = true
	c.mu.Unlock()

	metrics.CategoriesCached.Set(float64(len(names)))
	c.log.Debug("categories refreshed", "count", len(names))

	return slices.Clone(names), nil
}

// Invalidate marks the cached list stale so the next Get refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchedAt = time.Time{}
}
