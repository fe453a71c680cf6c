package mcp

import (
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides grounded web search.
	Search driving.SearchService

	// Scrape provides URL content scraping.
	Scrape driving.ScrapeService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Scrape == nil {
		return ErrMissingScrapeService
	}
	return nil
}
