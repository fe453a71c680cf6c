package domain

// SearchResponse is the citation-annotated result of one grounded search.
type SearchResponse struct {
	// Summary is the answer text with inline [n] citation markers.
	Summary string `json:"summary"`
	// Citations lists the numbered sources referenced by the markers.
	Citations []Citation `json:"citations"`
}

// SearchResponseDetail extends SearchResponse with the raw source list used
// for follow-up scraping.
type SearchResponseDetail struct {
	SearchResponse
	// Sources are the deduplicated grounding sources, capped at five.
	Sources []SearchResultDetail `json:"sources"`
}

// BatchSearchOptions configures a batch search request.
type BatchSearchOptions struct {
	// ScrapeContent enables fetching the content behind each query's sources.
	ScrapeContent bool
	// ContentMode is the reduction applied to scraped content.
	ContentMode ContentMode
	// MaxContentLength bounds full-mode content, in characters.
	MaxContentLength int
}

// BatchSearchResult is the outcome for a single query within a batch. A
// query's failure populates Error and leaves the other fields empty; sibling
// queries are unaffected.
type BatchSearchResult struct {
	Query     string               `json:"query"`
	Summary   string               `json:"summary,omitempty"`
	Citations []Citation           `json:"citations,omitempty"`
	Sources   []SearchResultDetail `json:"sources,omitempty"`
	Scraped   []ScrapedContent     `json:"scraped_content,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// BatchSearchResponse aggregates the per-query results of a batch search.
type BatchSearchResponse struct {
	// ID uniquely identifies this batch run.
	ID string `json:"id"`
	// TotalQueries is the number of input queries.
	TotalQueries int `json:"total_queries"`
	// Results holds one entry per input query, in input order.
	Results []BatchSearchResult `json:"results"`
}

// ScrapeOptions configures a single scrape request.
type ScrapeOptions struct {
	// Mode is the content reduction strategy. Defaults to excerpt.
	Mode ContentMode
	// MaxContentLength bounds full-mode content, in characters.
	MaxContentLength int
}
