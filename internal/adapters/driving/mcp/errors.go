// Package mcp provides an MCP (Model Context Protocol) server adapter for
// grounder. It exposes grounded web search and URL scraping to AI assistants.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingScrapeService is returned when the scrape service is not provided.
var ErrMissingScrapeService = errors.New("mcp: scrape service is required")
