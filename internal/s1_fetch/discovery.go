package s1_fetch

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/pkg/logger"
)

// CachedDiscoverer wraps a discovery source with a TTL cache keyed by
// preference shape, so repeated preference-driven runs do not re-scrape
// the screener. The scheduler refreshes the default universe in the
// background.
type CachedDiscoverer struct {
	inner  contracts.Discoverer
	ttl    time.Duration
	logger *logger.Logger

	mu    sync.RWMutex
	cache map[string]cachedUniverse
}

type cachedUniverse struct {
	symbols   []string
	fetchedAt time.Time
}

// NewCachedDiscoverer wraps a discoverer with a TTL cache
func NewCachedDiscoverer(inner contracts.Discoverer, ttl time.Duration, log *logger.Logger) *CachedDiscoverer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedDiscoverer{
		inner:  inner,
		ttl:    ttl,
		logger: log,
		cache:  make(map[string]cachedUniverse),
	}
}

// Discover returns the cached universe when fresh, otherwise delegates
func (c *CachedDiscoverer) Discover(ctx context.Context, prefs contracts.Preferences) ([]string, error) {
	key := cacheKey(prefs)

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < c.ttl {
		c.logger.WithFields(map[string]interface{}{
			"key":   key,
			"count": len(entry.symbols),
		}).Debug("Serving discovery from cache")
		return append([]string(nil), entry.symbols...), nil
	}

	return c.Refresh(ctx, prefs)
}

// Refresh re-fetches the universe and replaces the cache entry
func (c *CachedDiscoverer) Refresh(ctx context.Context, prefs contracts.Preferences) ([]string, error) {
	symbols, err := c.inner.Discover(ctx, prefs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[cacheKey(prefs)] = cachedUniverse{
		symbols:   append([]string(nil), symbols...),
		fetchedAt: time.Now(),
	}
	c.mu.Unlock()

	return symbols, nil
}

// cacheKey flattens the preference fields that influence discovery
func cacheKey(prefs contracts.Preferences) string {
	sectors := append([]string(nil), prefs.PreferredSectors...)
	for i := range sectors {
		sectors[i] = strings.ToLower(strings.TrimSpace(sectors[i]))
	}
	sort.Strings(sectors)

	caps := append([]string(nil), prefs.MarketCap...)
	for i := range caps {
		caps[i] = strings.ToLower(strings.TrimSpace(caps[i]))
	}
	sort.Strings(caps)

	parts := []string{
		strings.Join(sectors, "+"),
		strings.Join(caps, "+"),
	}
	if prefs.DividendPreference {
		parts = append(parts, "div")
	}
	return strings.Join(parts, "|")
}
