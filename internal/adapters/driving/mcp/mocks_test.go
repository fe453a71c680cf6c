package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response *domain.SearchResponse
	detail   *domain.SearchResponseDetail
	batch    *domain.BatchSearchResponse
	err      error

	lastQuery   string
	lastQueries []string
	lastOpts    domain.BatchSearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string) (*domain.SearchResponse, error) {
	m.lastQuery = query
	return m.response, m.err
}

func (m *mockSearchService) SearchWithSources(_ context.Context, query string) (*domain.SearchResponseDetail, error) {
	m.lastQuery = query
	return m.detail, m.err
}

func (m *mockSearchService) BatchSearch(
	_ context.Context,
	queries []string,
	opts domain.BatchSearchOptions,
) (*domain.BatchSearchResponse, error) {
	m.lastQueries = queries
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.batch != nil {
		return m.batch, nil
	}
	results := make([]domain.BatchSearchResult, len(queries))
	for i, q := range queries {
		results[i] = domain.BatchSearchResult{
			Query:   q,
			Summary: fmt.Sprintf("answer for %s", q),
		}
	}
	return &domain.BatchSearchResponse{
		ID:           "batch-1",
		TotalQueries: len(queries),
		Results:      results,
	}, nil
}

// mockScrapeService is a mock implementation of driving.ScrapeService.
type mockScrapeService struct {
	content *domain.ScrapedContent
	err     error

	lastURL  string
	lastOpts domain.ScrapeOptions
}

func (m *mockScrapeService) ScrapeURL(
	_ context.Context,
	url string,
	opts domain.ScrapeOptions,
) (*domain.ScrapedContent, error) {
	m.lastURL = url
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.content != nil {
		return m.content, nil
	}
	return &domain.ScrapedContent{
		URL:       url,
		Title:     "Example",
		Content:   "example content",
		ScrapedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}
