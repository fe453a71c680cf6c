package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driving"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// maxBatchQueries bounds how many queries one batch request may carry.
const maxBatchQueries = 10

// Ensure SearchService implements the driving port.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService orchestrates grounded search: it drives the generator,
// reconciles citations, and (for batch requests) scrapes the content behind
// each query's sources.
type SearchService struct {
	generator driven.GroundedGenerator
	scraper   *Scraper

	// pause waits between query waves. Overridden in tests.
	pause func(ctx context.Context, d time.Duration) error
}

// NewSearchService creates the search orchestrator. scraper may be nil when
// content scraping is not wired, in which case batch requests ignore the
// scrape option.
func NewSearchService(generator driven.GroundedGenerator, scraper *Scraper) *SearchService {
	return &SearchService{
		generator: generator,
		scraper:   scraper,
		pause:     waitDelay,
	}
}

// waitDelay blocks for d or until ctx is cancelled.
func waitDelay(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// waveConfig returns the query wave size and pacing delay, tracking the
// scraper's live-reloaded knobs when a scraper is wired.
func (s *SearchService) waveConfig() (int, time.Duration) {
	if s.scraper != nil {
		cfg := s.scraper.config()
		return cfg.BatchSize, cfg.BatchDelay
	}
	return DefaultBatchSize, DefaultBatchDelay
}

// Search runs one grounded search and returns the annotated summary with its
// citation list.
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	answer, err := s.generator.GenerateGrounded(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("grounded search: %w", err)
	}

	summary, citations := Reconcile(answer)
	logger.Debug("search %q: %d citations", query, len(citations))
	return &domain.SearchResponse{
		Summary:   summary,
		Citations: citations,
	}, nil
}

// SearchWithSources runs one grounded search and additionally extracts the
// deduplicated source list used for follow-up scraping.
func (s *SearchService) SearchWithSources(ctx context.Context, query string) (*domain.SearchResponseDetail, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	answer, err := s.generator.GenerateGrounded(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("grounded search: %w", err)
	}

	summary, citations := Reconcile(answer)
	return &domain.SearchResponseDetail{
		SearchResponse: domain.SearchResponse{
			Summary:   summary,
			Citations: citations,
		},
		Sources: ExtractSources(answer.Metadata),
	}, nil
}

// BatchSearch runs queries in fixed-size concurrent waves with one pacing
// delay between waves, optionally scraping the sources each query surfaced.
// Results preserve query order regardless of completion order; a failed query
// records its error in the matching result entry and never aborts its
// siblings.
func (s *SearchService) BatchSearch(
	ctx context.Context,
	queries []string,
	opts domain.BatchSearchOptions,
) (*domain.BatchSearchResponse, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: at least one query is required", domain.ErrInvalidInput)
	}
	if len(queries) > maxBatchQueries {
		return nil, fmt.Errorf("%w: at most %d queries per batch, got %d", domain.ErrInvalidInput, maxBatchQueries, len(queries))
	}

	mode := opts.ContentMode
	if mode == "" {
		mode = domain.ContentModeExcerpt
	}

	batchSize, batchDelay := s.waveConfig()
	results := make([]domain.BatchSearchResult, len(queries))

	for waveStart := 0; waveStart < len(queries); waveStart += batchSize {
		if waveStart > 0 {
			if err := s.pause(ctx, batchDelay); err != nil {
				for i := waveStart; i < len(queries); i++ {
					results[i] = domain.BatchSearchResult{Query: queries[i], Error: err.Error()}
				}
				break
			}
		}

		waveEnd := waveStart + batchSize
		if waveEnd > len(queries) {
			waveEnd = len(queries)
		}
		logger.Debug("search wave %d-%d of %d", waveStart, waveEnd-1, len(queries))

		var wg sync.WaitGroup
		for i := waveStart; i < waveEnd; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = s.runBatchQuery(ctx, queries[i], mode, opts)
			}(i)
		}
		wg.Wait()
	}

	return &domain.BatchSearchResponse{
		ID:           uuid.NewString(),
		TotalQueries: len(queries),
		Results:      results,
	}, nil
}

// runBatchQuery produces the result record for one query in a batch.
func (s *SearchService) runBatchQuery(
	ctx context.Context,
	query string,
	mode domain.ContentMode,
	opts domain.BatchSearchOptions,
) domain.BatchSearchResult {
	detail, err := s.SearchWithSources(ctx, query)
	if err != nil {
		logger.Warn("batch query %q failed: %v", query, err)
		return domain.BatchSearchResult{Query: query, Error: err.Error()}
	}

	result := domain.BatchSearchResult{
		Query:     query,
		Summary:   detail.Summary,
		Citations: detail.Citations,
		Sources:   detail.Sources,
	}

	if opts.ScrapeContent && s.scraper != nil && len(detail.Sources) > 0 {
		urls := make([]string, len(detail.Sources))
		for j, src := range detail.Sources {
			urls[j] = src.URL
		}
		result.Scraped = s.scraper.FetchMany(ctx, urls, mode, opts.MaxContentLength)
	}

	return result
}
