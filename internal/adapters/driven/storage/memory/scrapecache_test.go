package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

func TestScrapeCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss on unknown url", func(t *testing.T) {
		c := NewScrapeCache()
		_, ok, err := c.Get(ctx, "https://example.com", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("put then get returns a copy", func(t *testing.T) {
		c := NewScrapeCache()
		content := &domain.ScrapedContent{
			URL:     "https://example.com",
			Title:   "Example",
			Content: "body",
		}
		require.NoError(t, c.Put(ctx, content))

		got, ok, err := c.Get(ctx, "https://example.com", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Example", got.Title)

		got.Title = "mutated"
		again, _, _ := c.Get(ctx, "https://example.com", time.Hour)
		assert.Equal(t, "Example", again.Title, "callers must not share the stored record")
	})

	t.Run("stale entries are ignored", func(t *testing.T) {
		c := NewScrapeCache()
		base := time.Now()
		c.now = func() time.Time { return base }

		require.NoError(t, c.Put(ctx, &domain.ScrapedContent{URL: "https://example.com", Title: "T"}))

		c.now = func() time.Time { return base.Add(59 * time.Minute) }
		_, ok, _ := c.Get(ctx, "https://example.com", time.Hour)
		assert.True(t, ok)

		c.now = func() time.Time { return base.Add(time.Hour) }
		_, ok, _ = c.Get(ctx, "https://example.com", time.Hour)
		assert.False(t, ok, "an entry exactly at the TTL boundary is stale")

		assert.Equal(t, 1, c.Len(), "stale entries are ignored, not purged")
	})

	t.Run("put overwrites the previous entry", func(t *testing.T) {
		c := NewScrapeCache()
		require.NoError(t, c.Put(ctx, &domain.ScrapedContent{URL: "https://example.com", Title: "old"}))
		require.NoError(t, c.Put(ctx, &domain.ScrapedContent{URL: "https://example.com", Title: "new"}))

		got, ok, _ := c.Get(ctx, "https://example.com", time.Hour)
		require.True(t, ok)
		assert.Equal(t, "new", got.Title)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("close is a no-op", func(t *testing.T) {
		assert.NoError(t, NewScrapeCache().Close())
	})
}
