package driven

import (
	"golang.org/x/net/html"
)

// Article is the readable portion of a fetched HTML page: the pruned content
// subtree plus whatever title metadata was found.
type Article struct {
	// Title is the page title, empty when none was found.
	Title string
	// Root is the pruned DOM subtree holding the readable content.
	Root *html.Node
}

// ArticleExtractor turns raw HTML into readable article text in two steps:
// extraction of the content subtree, then rendering to plain text. Both are
// pure with respect to their inputs.
type ArticleExtractor interface {
	// Extract locates the readable article in the HTML document. Returns
	// domain.ErrNoContent when the page has no extractable content.
	Extract(content []byte, sourceURL string) (*Article, error)

	// Render converts an extracted article tree to plain text.
	Render(a *Article) (string, error)
}
