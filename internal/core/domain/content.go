package domain

import (
	"fmt"
	"time"
)

// ContentMode selects the reduction strategy applied to scraped article text.
type ContentMode string

const (
	// ContentModeExcerpt reduces content to a short excerpt, using the
	// summarisation capability when the content is long enough to warrant it.
	ContentModeExcerpt ContentMode = "excerpt"
	// ContentModeSummary reduces content to a longer summary, same structure
	// as excerpt with a larger target length.
	ContentModeSummary ContentMode = "summary"
	// ContentModeFull returns the full extracted text, truncated at the
	// configured maximum length. No AI involvement.
	ContentModeFull ContentMode = "full"
)

// ParseContentMode parses a content mode string. An empty string defaults to
// excerpt mode.
func ParseContentMode(s string) (ContentMode, error) {
	switch ContentMode(s) {
	case "":
		return ContentModeExcerpt, nil
	case ContentModeExcerpt, ContentModeSummary, ContentModeFull:
		return ContentMode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown content mode %q", ErrInvalidInput, s)
	}
}

// ScrapedContent is the outcome of one scrape attempt for a URL, or a cached
// copy of an earlier one. It is never mutated after creation; an expired
// cache entry is superseded by a fresh record, not updated.
type ScrapedContent struct {
	// URL is the URL that was scraped.
	URL string `json:"url"`
	// Title is the extracted article title, "Scraped Content" when the page
	// had none, or "Error" for a failed scrape.
	Title string `json:"title"`
	// Content is the reduced article text. Empty when the scrape failed.
	Content string `json:"content,omitempty"`
	// Error holds the last attempt's failure message when all retries were
	// exhausted. Empty on success.
	Error string `json:"error,omitempty"`
	// ScrapedAt is when this record was created.
	ScrapedAt time.Time `json:"scraped_at"`
}

// Failed reports whether this record represents a failed scrape.
func (c *ScrapedContent) Failed() bool {
	return c.Error != ""
}
