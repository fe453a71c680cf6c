// Package sqlite provides a persistent scrape cache so article content
// survives process restarts. TTL semantics match the in-memory cache: stale
// rows are ignored on lookup, not deleted.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
)

// Ensure ScrapeCache implements the interface.
var _ driven.ScrapeCache = (*ScrapeCache)(nil)

// ScrapeCache is a SQLite-backed implementation of driven.ScrapeCache.
type ScrapeCache struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS scrape_cache (
	url        TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	scraped_at INTEGER NOT NULL,
	stored_at  INTEGER NOT NULL
)`

// NewScrapeCache opens (creating if needed) a scrape cache database at path.
// An empty path defaults to ~/.grounder/data/scrape_cache.db.
func NewScrapeCache(path string) (*ScrapeCache, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".grounder", "data", "scrape_cache.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &ScrapeCache{db: db, path: path}, nil
}

// Path returns the database file path.
func (c *ScrapeCache) Path() string {
	return c.path
}

// Get returns the cached content for url when a row exists and is younger
// than maxAge.
func (c *ScrapeCache) Get(ctx context.Context, url string, maxAge time.Duration) (*domain.ScrapedContent, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT title, content, scraped_at, stored_at FROM scrape_cache WHERE url = ?`, url)

	var (
		title, content      string
		scrapedAt, storedAt int64
	)
	if err := row.Scan(&title, &content, &scrapedAt, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	if time.Since(time.UnixMilli(storedAt)) >= maxAge {
		return nil, false, nil
	}

	return &domain.ScrapedContent{
		URL:       url,
		Title:     title,
		Content:   content,
		ScrapedAt: time.UnixMilli(scrapedAt),
	}, true, nil
}

// Put stores content keyed by its URL, stamped with the current time.
func (c *ScrapeCache) Put(ctx context.Context, content *domain.ScrapedContent) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO scrape_cache (url, title, content, scraped_at, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			scraped_at = excluded.scraped_at,
			stored_at = excluded.stored_at`,
		content.URL, content.Title, content.Content,
		content.ScrapedAt.UnixMilli(), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Prune deletes rows older than maxAge. Optional housekeeping; lookups never
// depend on it.
func (c *ScrapeCache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	res, err := c.db.ExecContext(ctx, `DELETE FROM scrape_cache WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (c *ScrapeCache) Close() error {
	return c.db.Close()
}
