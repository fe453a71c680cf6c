package driving

import (
	"context"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// SearchService provides grounded web search with citation annotation.
type SearchService interface {
	// Search runs one grounded search and returns the annotated summary
	// with its citation list.
	Search(ctx context.Context, query string) (*domain.SearchResponse, error)

	// SearchWithSources additionally returns the deduplicated source list
	// used for follow-up scraping.
	SearchWithSources(ctx context.Context, query string) (*domain.SearchResponseDetail, error)

	// BatchSearch runs 1 to 10 queries, optionally scraping each query's
	// sources. A single query's failure is recorded in its result entry and
	// never aborts sibling queries.
	BatchSearch(ctx context.Context, queries []string, opts domain.BatchSearchOptions) (*domain.BatchSearchResponse, error)
}
