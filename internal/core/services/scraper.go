package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// Default scraper configuration values.
const (
	DefaultScrapeTimeout    = 10 * time.Second
	DefaultScrapeRetries    = 3
	DefaultBatchSize        = 5
	DefaultBatchDelay       = 100 * time.Millisecond
	DefaultCacheTTL         = time.Hour
	DefaultExcerptLength    = 1000
	DefaultSummaryLength    = 5000
	DefaultMaxContentLength = 10000

	scrapeUserAgent = "grounder-cli/0.1 (+https://github.com/custodia-labs/grounder-cli)"

	// maxBodySize bounds how much of a response body is read.
	maxBodySize = 10 << 20

	summaryTruncationMarker = "[Content truncated for summary mode]"
)

// ScraperConfig holds the tunable knobs of the content pipeline.
// All fields are environment-sourced with the defaults above.
type ScraperConfig struct {
	// Timeout bounds each fetch attempt.
	Timeout time.Duration
	// Retries is the number of fetch attempts per URL.
	Retries int
	// BatchSize is how many URLs fetch concurrently in one wave.
	BatchSize int
	// BatchDelay is the pacing delay between waves.
	BatchDelay time.Duration
	// CacheTTL is the age beyond which a cache entry is ignored.
	CacheTTL time.Duration
	// ExcerptLength is the excerpt-mode target length in characters.
	ExcerptLength int
	// SummaryLength is the summary-mode target length in characters.
	SummaryLength int
}

// withDefaults fills zero fields with the default values.
func (c ScraperConfig) withDefaults() ScraperConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultScrapeTimeout
	}
	if c.Retries <= 0 {
		c.Retries = DefaultScrapeRetries
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchDelay <= 0 {
		c.BatchDelay = DefaultBatchDelay
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.ExcerptLength <= 0 {
		c.ExcerptLength = DefaultExcerptLength
	}
	if c.SummaryLength <= 0 {
		c.SummaryLength = DefaultSummaryLength
	}
	return c
}

// Scraper fetches URLs, extracts their readable content, reduces it per
// content mode and caches the results by URL. It owns the retry loop and the
// batch pacing for multi-URL workloads.
type Scraper struct {
	client     *http.Client
	cache      driven.ScrapeCache
	extractor  driven.ArticleExtractor
	summariser driven.Summariser

	cfgMu sync.RWMutex
	cfg   ScraperConfig

	// limiter paces fetch waves: one wave per BatchDelay, first wave free.
	limiter *rate.Limiter

	// inflight serialises concurrent fetches of the same URL so the
	// check-then-fetch-then-cache sequence stays atomic per key.
	inflightMu sync.Mutex
	inflight   map[string]chan struct{}

	// backoffUnit scales the exponential backoff between attempts.
	// Overridden in tests.
	backoffUnit time.Duration
}

// NewScraper creates a content scraper. summariser may be nil, in which case
// excerpt and summary modes degrade to plain truncation.
func NewScraper(
	cache driven.ScrapeCache,
	extractor driven.ArticleExtractor,
	summariser driven.Summariser,
	cfg ScraperConfig,
) *Scraper {
	cfg = cfg.withDefaults()
	return &Scraper{
		client:      &http.Client{},
		cache:       cache,
		extractor:   extractor,
		summariser:  summariser,
		cfg:         cfg,
		limiter:     rate.NewLimiter(rate.Every(cfg.BatchDelay), 1),
		inflight:    make(map[string]chan struct{}),
		backoffUnit: time.Second,
	}
}

// UpdateConfig replaces the pipeline knobs at runtime. Used by the config
// live-reload path while the server runs.
func (s *Scraper) UpdateConfig(cfg ScraperConfig) {
	cfg = cfg.withDefaults()
	s.cfgMu.Lock()
	s.cfg = cfg
	s.limiter.SetLimit(rate.Every(cfg.BatchDelay))
	s.cfgMu.Unlock()
	logger.Debug("scraper config updated: batch=%d delay=%s ttl=%s", cfg.BatchSize, cfg.BatchDelay, cfg.CacheTTL)
}

func (s *Scraper) config() ScraperConfig {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// Fetch returns the reduced content behind url, from cache when a fresh entry
// exists, otherwise by fetching with bounded retries and exponential backoff.
// Failures are reported inside the returned record; error results are never
// cached, so a later call retries the URL.
func (s *Scraper) Fetch(ctx context.Context, url string, mode domain.ContentMode, maxContentLength int) *domain.ScrapedContent {
	cfg := s.config()

	if cached := s.cacheLookup(ctx, url, cfg.CacheTTL); cached != nil {
		return cached
	}

	// Wait for any concurrent fetch of the same URL, then re-check the cache.
	if done := s.claimURL(url); done != nil {
		<-done
		if cached := s.cacheLookup(ctx, url, cfg.CacheTTL); cached != nil {
			return cached
		}
		// The other fetch failed; claim again and do our own.
		return s.Fetch(ctx, url, mode, maxContentLength)
	}
	defer s.releaseURL(url)

	var lastErr error
	for attempt := 1; attempt <= cfg.Retries; attempt++ {
		content, err := s.attempt(ctx, url, mode, maxContentLength, cfg)
		if err == nil {
			if cacheErr := s.cache.Put(ctx, content); cacheErr != nil {
				logger.Warn("caching %s: %v", url, cacheErr)
			}
			return content
		}

		lastErr = err
		logger.Debug("scrape %s attempt %d/%d failed: %v", url, attempt, cfg.Retries, err)
		if attempt == cfg.Retries {
			break
		}

		backoff := s.backoffUnit << (attempt - 1)
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(backoff):
		}
		if ctx.Err() != nil {
			break
		}
	}

	logger.Error("scrape %s failed after %d attempts: %v", url, cfg.Retries, lastErr)
	return &domain.ScrapedContent{
		URL:       url,
		Title:     "Error",
		Error:     lastErr.Error(),
		ScrapedAt: time.Now(),
	}
}

// cacheLookup returns a fresh cache entry for url, or nil.
func (s *Scraper) cacheLookup(ctx context.Context, url string, ttl time.Duration) *domain.ScrapedContent {
	cached, ok, err := s.cache.Get(ctx, url, ttl)
	if err != nil {
		logger.Warn("cache lookup %s: %v", url, err)
		return nil
	}
	if !ok {
		return nil
	}
	logger.Debug("cache hit: %s", url)
	return cached
}

// claimURL marks url as being fetched by this caller. When another fetch is
// already in flight it returns that fetch's done channel instead.
func (s *Scraper) claimURL(url string) <-chan struct{} {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if done, ok := s.inflight[url]; ok {
		return done
	}
	s.inflight[url] = make(chan struct{})
	return nil
}

func (s *Scraper) releaseURL(url string) {
	s.inflightMu.Lock()
	done := s.inflight[url]
	delete(s.inflight, url)
	s.inflightMu.Unlock()
	if done != nil {
		close(done)
	}
}

// attempt performs one fetch-extract-reduce cycle.
func (s *Scraper) attempt(
	ctx context.Context,
	url string,
	mode domain.ContentMode,
	maxContentLength int,
	cfg ScraperConfig,
) (*domain.ScrapedContent, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	article, err := s.extractor.Extract(body, url)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
	text, err := s.extractor.Render(article)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}

	reduced := s.reduce(ctx, text, mode, maxContentLength, cfg)

	title := article.Title
	if title == "" {
		title = "Scraped Content"
	}
	return &domain.ScrapedContent{
		URL:       url,
		Title:     title,
		Content:   reduced,
		ScrapedAt: time.Now(),
	}, nil
}

// reduce applies the content-mode reduction to the full extracted text.
func (s *Scraper) reduce(ctx context.Context, text string, mode domain.ContentMode, maxContentLength int, cfg ScraperConfig) string {
	switch mode {
	case domain.ContentModeSummary:
		// Trigger threshold 1.2x the target length.
		return s.condense(ctx, text, cfg.SummaryLength, cfg.SummaryLength*6/5, summaryTruncationMarker)
	case domain.ContentModeFull:
		if maxContentLength <= 0 {
			maxContentLength = DefaultMaxContentLength
		}
		if len(text) > maxContentLength {
			return text[:maxContentLength] + fmt.Sprintf("[Content truncated at %d characters]", maxContentLength)
		}
		return text
	default:
		// Excerpt mode, trigger threshold 1.5x the target length.
		return s.condense(ctx, text, cfg.ExcerptLength, cfg.ExcerptLength*3/2, "...")
	}
}

// condense reduces text to roughly target characters, preferring the AI
// summariser when one is configured and the text is long enough to warrant
// it, and falling back to plain truncation otherwise.
func (s *Scraper) condense(ctx context.Context, text string, target, trigger int, truncMarker string) string {
	if s.summariser != nil && len(text) > trigger {
		summary, err := s.summariser.Summarise(ctx, text, target)
		if err == nil {
			return summary
		}
		logger.Warn("summarise failed, falling back to truncation: %v", err)
	}
	if len(text) > target {
		return text[:target] + truncMarker
	}
	return text
}

// FetchMany fetches urls in fixed-size concurrent waves with a pacing delay
// between waves. Results preserve input order regardless of completion order;
// aborting one attempt never cancels its siblings.
func (s *Scraper) FetchMany(ctx context.Context, urls []string, mode domain.ContentMode, maxContentLength int) []domain.ScrapedContent {
	cfg := s.config()
	results := make([]domain.ScrapedContent, len(urls))

	for waveStart := 0; waveStart < len(urls); waveStart += cfg.BatchSize {
		if err := s.limiter.Wait(ctx); err != nil {
			for i := waveStart; i < len(urls); i++ {
				results[i] = domain.ScrapedContent{
					URL:       urls[i],
					Title:     "Error",
					Error:     err.Error(),
					ScrapedAt: time.Now(),
				}
			}
			break
		}

		waveEnd := waveStart + cfg.BatchSize
		if waveEnd > len(urls) {
			waveEnd = len(urls)
		}
		logger.Debug("scraping wave %d-%d of %d", waveStart, waveEnd-1, len(urls))

		var wg sync.WaitGroup
		for i := waveStart; i < waveEnd; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = *s.Fetch(ctx, urls[i], mode, maxContentLength)
			}(i)
		}
		wg.Wait()
	}

	return results
}

// ScrapeURL implements the driving.ScrapeService surface over Fetch.
func (s *Scraper) ScrapeURL(ctx context.Context, url string, opts domain.ScrapeOptions) (*domain.ScrapedContent, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	mode := opts.Mode
	if mode == "" {
		mode = domain.ContentModeExcerpt
	}
	return s.Fetch(ctx, url, mode, opts.MaxContentLength), nil
}
