// Package memory provides in-memory storage adapters.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
)

// Ensure ScrapeCache implements the interface.
var _ driven.ScrapeCache = (*ScrapeCache)(nil)

// ScrapeCache is an in-memory implementation of driven.ScrapeCache.
// Entries are unbounded; staleness is decided at lookup time, stale entries
// are ignored rather than purged.
type ScrapeCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry

	// now is swappable for tests.
	now func() time.Time
}

type cacheEntry struct {
	content  domain.ScrapedContent
	storedAt time.Time
}

// NewScrapeCache creates a new in-memory scrape cache.
func NewScrapeCache() *ScrapeCache {
	return &ScrapeCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached content for url when an entry exists and is younger
// than maxAge.
func (c *ScrapeCache) Get(_ context.Context, url string, maxAge time.Duration) (*domain.ScrapedContent, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok {
		return nil, false, nil
	}
	if c.now().Sub(entry.storedAt) >= maxAge {
		return nil, false, nil
	}

	content := entry.content
	return &content, true, nil
}

// Put stores content keyed by its URL, stamped with the current time.
func (c *ScrapeCache) Put(_ context.Context, content *domain.ScrapedContent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[content.URL] = cacheEntry{
		content:  *content,
		storedAt: c.now(),
	}
	return nil
}

// Len returns the number of entries held, stale ones included.
func (c *ScrapeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close is a no-op for the in-memory cache.
func (c *ScrapeCache) Close() error {
	return nil
}
