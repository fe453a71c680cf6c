package driving

import (
	"context"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

// ScrapeService fetches and reduces the readable content behind a URL.
type ScrapeService interface {
	// ScrapeURL fetches url with bounded retries and returns the reduced
	// content. Acquisition failures are reported inside the returned record,
	// not as an error; the error return is reserved for invalid input and
	// context cancellation.
	ScrapeURL(ctx context.Context, url string, opts domain.ScrapeOptions) (*domain.ScrapedContent, error)
}
