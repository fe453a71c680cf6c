package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to answer with grounded web results"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Summary   string            `json:"summary"`
	Citations []domain.Citation `json:"citations"`
}

// BatchSearchInput is the input schema for the batchSearch tool.
type BatchSearchInput struct {
	Queries          []string `json:"queries" jsonschema:"between 1 and 10 search queries to run"`
	ScrapeContent    bool     `json:"scrapeContent,omitempty" jsonschema:"fetch the content behind each query's sources"`
	ContentMode      string   `json:"contentMode,omitempty" jsonschema:"content reduction mode: excerpt, summary or full (default excerpt)"`
	MaxContentLength int      `json:"maxContentLength,omitempty" jsonschema:"maximum characters of content per source in full mode"`
}

// BatchSearchOutput is the output schema for the batchSearch tool.
type BatchSearchOutput struct {
	ID           string                     `json:"id"`
	TotalQueries int                        `json:"totalQueries"`
	Results      []domain.BatchSearchResult `json:"results"`
}

// ScrapeURLInput is the input schema for the scrapeUrl tool.
type ScrapeURLInput struct {
	URL              string `json:"url" jsonschema:"the URL to fetch and extract readable content from"`
	ContentMode      string `json:"contentMode,omitempty" jsonschema:"content reduction mode: excerpt, summary or full (default excerpt)"`
	MaxContentLength int    `json:"maxContentLength,omitempty" jsonschema:"maximum characters of content in full mode"`
}

// ScrapeURLOutput is the output schema for the scrapeUrl tool.
type ScrapeURLOutput struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	ScrapedAt string `json:"scraped_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the web and return a citation-annotated answer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "batchSearch",
		Description: "Run up to 10 web searches, optionally scraping each result's sources",
	}, s.handleBatchSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scrapeUrl",
		Description: "Fetch a URL and extract its readable content",
	}, s.handleScrapeURL)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	resp, err := s.ports.Search.Search(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	citations := resp.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}

	return nil, SearchOutput{
		Summary:   resp.Summary,
		Citations: citations,
	}, nil
}

// handleBatchSearch handles the batchSearch tool invocation.
func (s *Server) handleBatchSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BatchSearchInput,
) (*mcp.CallToolResult, BatchSearchOutput, error) {
	mode, err := domain.ParseContentMode(input.ContentMode)
	if err != nil {
		return nil, BatchSearchOutput{}, err
	}

	opts := domain.BatchSearchOptions{
		ScrapeContent:    input.ScrapeContent,
		ContentMode:      mode,
		MaxContentLength: input.MaxContentLength,
	}

	resp, err := s.ports.Search.BatchSearch(ctx, input.Queries, opts)
	if err != nil {
		return nil, BatchSearchOutput{}, err
	}

	return nil, BatchSearchOutput{
		ID:           resp.ID,
		TotalQueries: resp.TotalQueries,
		Results:      resp.Results,
	}, nil
}

// handleScrapeURL handles the scrapeUrl tool invocation.
func (s *Server) handleScrapeURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScrapeURLInput,
) (*mcp.CallToolResult, ScrapeURLOutput, error) {
	mode, err := domain.ParseContentMode(input.ContentMode)
	if err != nil {
		return nil, ScrapeURLOutput{}, err
	}

	opts := domain.ScrapeOptions{
		Mode:             mode,
		MaxContentLength: input.MaxContentLength,
	}

	content, err := s.ports.Scrape.ScrapeURL(ctx, input.URL, opts)
	if err != nil {
		return nil, ScrapeURLOutput{}, err
	}

	return nil, ScrapeURLOutput{
		URL:       content.URL,
		Title:     content.Title,
		Content:   content.Content,
		Error:     content.Error,
		ScrapedAt: content.ScrapedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}
