package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// ScrapeCache stores scraped content keyed by URL. Entries are unbounded and
// never evicted; a lookup simply ignores entries older than maxAge. Failed
// scrape results are never stored.
type ScrapeCache interface {
	// Get returns the cached content for url if an entry exists and is
	// younger than maxAge. The second return value reports a usable hit.
	Get(ctx context.Context, url string, maxAge time.Duration) (*domain.ScrapedContent, bool, error)

	// Put stores content keyed by its URL, stamped with the current time.
	Put(ctx context.Context, content *domain.ScrapedContent) error

	// Close releases any resources held by the cache.
	Close() error
}
