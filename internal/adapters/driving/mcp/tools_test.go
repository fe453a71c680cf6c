package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

func newTestServer(t *testing.T, search *mockSearchService, scrape *mockScrapeService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Search: search, Scrape: scrape})
	require.NoError(t, err)
	return server
}

func TestHandleSearch(t *testing.T) {
	t.Run("returns summary and citations", func(t *testing.T) {
		search := &mockSearchService{
			response: &domain.SearchResponse{
				Summary: "Go is a language.[1]",
				Citations: []domain.Citation{
					{Number: 1, Title: "Go", URL: "https://go.dev"},
				},
			},
		}
		server := newTestServer(t, search, &mockScrapeService{})

		_, out, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "what is go"})
		require.NoError(t, err)
		assert.Equal(t, "what is go", search.lastQuery)
		assert.Equal(t, "Go is a language.[1]", out.Summary)
		require.Len(t, out.Citations, 1)
		assert.Equal(t, "https://go.dev", out.Citations[0].URL)
	})

	t.Run("nil citations become empty slice", func(t *testing.T) {
		search := &mockSearchService{
			response: &domain.SearchResponse{Summary: "plain answer"},
		}
		server := newTestServer(t, search, &mockScrapeService{})

		_, out, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "q"})
		require.NoError(t, err)
		assert.NotNil(t, out.Citations)
		assert.Empty(t, out.Citations)
	})

	t.Run("service error is propagated", func(t *testing.T) {
		search := &mockSearchService{err: errors.New("backend down")}
		server := newTestServer(t, search, &mockScrapeService{})

		_, _, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "q"})
		assert.Error(t, err)
	})
}

func TestHandleBatchSearch(t *testing.T) {
	t.Run("passes queries and options through", func(t *testing.T) {
		search := &mockSearchService{}
		server := newTestServer(t, search, &mockScrapeService{})

		input := BatchSearchInput{
			Queries:          []string{"a", "b"},
			ScrapeContent:    true,
			ContentMode:      "summary",
			MaxContentLength: 2000,
		}
		_, out, err := server.handleBatchSearch(context.Background(), nil, input)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, search.lastQueries)
		assert.True(t, search.lastOpts.ScrapeContent)
		assert.Equal(t, domain.ContentModeSummary, search.lastOpts.ContentMode)
		assert.Equal(t, 2000, search.lastOpts.MaxContentLength)
		assert.Equal(t, 2, out.TotalQueries)
		require.Len(t, out.Results, 2)
		assert.Equal(t, "a", out.Results[0].Query)
	})

	t.Run("empty content mode defaults to excerpt", func(t *testing.T) {
		search := &mockSearchService{}
		server := newTestServer(t, search, &mockScrapeService{})

		_, _, err := server.handleBatchSearch(context.Background(), nil, BatchSearchInput{
			Queries: []string{"a"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ContentModeExcerpt, search.lastOpts.ContentMode)
	})

	t.Run("unknown content mode is rejected", func(t *testing.T) {
		search := &mockSearchService{}
		server := newTestServer(t, search, &mockScrapeService{})

		_, _, err := server.handleBatchSearch(context.Background(), nil, BatchSearchInput{
			Queries:     []string{"a"},
			ContentMode: "bogus",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("validation error is propagated", func(t *testing.T) {
		search := &mockSearchService{err: domain.ErrInvalidInput}
		server := newTestServer(t, search, &mockScrapeService{})

		_, _, err := server.handleBatchSearch(context.Background(), nil, BatchSearchInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestHandleScrapeURL(t *testing.T) {
	t.Run("returns scraped content", func(t *testing.T) {
		scrape := &mockScrapeService{}
		server := newTestServer(t, &mockSearchService{}, scrape)

		input := ScrapeURLInput{URL: "https://example.com/post", ContentMode: "full", MaxContentLength: 500}
		_, out, err := server.handleScrapeURL(context.Background(), nil, input)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/post", scrape.lastURL)
		assert.Equal(t, domain.ContentModeFull, scrape.lastOpts.Mode)
		assert.Equal(t, 500, scrape.lastOpts.MaxContentLength)
		assert.Equal(t, "Example", out.Title)
		assert.Equal(t, "example content", out.Content)
		assert.Equal(t, "2026-01-02T03:04:05Z", out.ScrapedAt)
	})

	t.Run("acquisition failure is carried in the record", func(t *testing.T) {
		scrape := &mockScrapeService{
			content: &domain.ScrapedContent{
				URL:   "https://example.com/404",
				Title: "Error",
				Error: "unexpected status 404",
			},
		}
		server := newTestServer(t, &mockSearchService{}, scrape)

		_, out, err := server.handleScrapeURL(context.Background(), nil, ScrapeURLInput{URL: "https://example.com/404"})
		require.NoError(t, err)
		assert.Empty(t, out.Content)
		assert.Equal(t, "unexpected status 404", out.Error)
	})

	t.Run("invalid input is an error", func(t *testing.T) {
		scrape := &mockScrapeService{err: domain.ErrInvalidInput}
		server := newTestServer(t, &mockSearchService{}, scrape)

		_, _, err := server.handleScrapeURL(context.Background(), nil, ScrapeURLInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
