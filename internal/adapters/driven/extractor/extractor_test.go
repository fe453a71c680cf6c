package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

func extractText(t *testing.T, html, url string) (string, string) {
	t.Helper()
	e := New()
	article, err := e.Extract([]byte(html), url)
	require.NoError(t, err)
	text, err := e.Render(article)
	require.NoError(t, err)
	return article.Title, text
}

func TestExtract(t *testing.T) {
	t.Run("prefers the article element", func(t *testing.T) {
		page := `<html><head><title>My Post</title></head><body>
			<nav>site navigation links</nav>
			<article><p>This is the body of the post, long enough to count.</p></article>
			<footer>copyright notice</footer>
		</body></html>`

		title, text := extractText(t, page, "https://example.com/post")
		assert.Equal(t, "My Post", title)
		assert.Contains(t, text, "body of the post")
		assert.NotContains(t, text, "navigation")
		assert.NotContains(t, text, "copyright")
	})

	t.Run("falls back to main then hinted containers", func(t *testing.T) {
		page := `<html><body>
			<main><p>Main content area with a reasonable amount of text.</p></main>
		</body></html>`
		_, text := extractText(t, page, "https://example.com/")
		assert.Contains(t, text, "Main content area")

		page = `<html><body>
			<div class="sidebar">short</div>
			<div class="post-content"><p>The hinted container holds the article text here.</p></div>
		</body></html>`
		_, text = extractText(t, page, "https://example.com/")
		assert.Contains(t, text, "hinted container")
	})

	t.Run("prunes script and style junk", func(t *testing.T) {
		page := `<html><body><article>
			<script>var tracking = true;</script>
			<style>.hidden { display: none }</style>
			<p>Readable paragraph text that survives the pruning pass.</p>
		</article></body></html>`

		_, text := extractText(t, page, "https://example.com/")
		assert.Contains(t, text, "Readable paragraph")
		assert.NotContains(t, text, "tracking")
		assert.NotContains(t, text, "display")
	})

	t.Run("h1 is the title fallback", func(t *testing.T) {
		page := `<html><body><article>
			<h1>Heading Title</h1>
			<p>Enough body text for the extraction threshold.</p>
		</article></body></html>`

		title, _ := extractText(t, page, "https://example.com/")
		assert.Equal(t, "Heading Title", title)
	})

	t.Run("url filename is the last title resort", func(t *testing.T) {
		page := `<html><body><article>
			<p>Enough body text for the extraction threshold.</p>
		</article></body></html>`

		e := New()
		article, err := e.Extract([]byte(page), "https://example.com/my-great_post.html")
		require.NoError(t, err)
		assert.Equal(t, "my great post", article.Title)
	})

	t.Run("too little text is no content", func(t *testing.T) {
		e := New()
		_, err := e.Extract([]byte(`<html><body><article>tiny</article></body></html>`), "https://example.com/")
		assert.ErrorIs(t, err, domain.ErrNoContent)
	})

	t.Run("rendering a nil article is no content", func(t *testing.T) {
		e := New()
		_, err := e.Render(nil)
		assert.ErrorIs(t, err, domain.ErrNoContent)
	})
}

func TestTidyText(t *testing.T) {
	got := tidyText("line one   \n\n\n\nline two\n\t\n  \nline three\n\n")
	assert.Equal(t, "line one\n\nline two\n\nline three", got)
}
