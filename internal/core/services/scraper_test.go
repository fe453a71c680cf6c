package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/grounder-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
)

// stubExtractor returns a fixed title and text for any input.
type stubExtractor struct {
	title string
	text  string
	err   error
}

func (e *stubExtractor) Extract(_ []byte, _ string) (*driven.Article, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &driven.Article{Title: e.title}, nil
}

func (e *stubExtractor) Render(_ *driven.Article) (string, error) {
	return e.text, nil
}

// stubSummariser records calls and returns a canned summary.
type stubSummariser struct {
	summary string
	err     error
	calls   atomic.Int32
}

func (s *stubSummariser) Summarise(_ context.Context, _ string, _ int) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func newTestScraper(extractor driven.ArticleExtractor, summariser driven.Summariser, cfg ScraperConfig) (*Scraper, *memory.ScrapeCache) {
	cache := memory.NewScrapeCache()
	s := NewScraper(cache, extractor, summariser, cfg)
	s.backoffUnit = time.Millisecond
	return s, cache
}

func okServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html><body><article>hello</article></body></html>")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScraperFetch(t *testing.T) {
	t.Run("successful fetch is cached", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, cache := newTestScraper(&stubExtractor{title: "Title", text: "body text"}, nil, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		require.False(t, got.Failed())
		assert.Equal(t, "Title", got.Title)
		assert.Equal(t, "body text", got.Content)
		assert.Equal(t, 1, cache.Len())

		again := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.Equal(t, got.Content, again.Content)
		assert.Equal(t, int32(1), hits.Load(), "second fetch must come from cache")
	})

	t.Run("missing title falls back to Scraped Content", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{text: "body"}, nil, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.Equal(t, "Scraped Content", got.Title)
	})

	t.Run("retries exactly the configured number of attempts", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		s, cache := newTestScraper(&stubExtractor{text: "x"}, nil, ScraperConfig{Retries: 3})
		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)

		assert.True(t, got.Failed())
		assert.Equal(t, "Error", got.Title)
		assert.Contains(t, got.Error, "status 500")
		assert.Equal(t, int32(3), hits.Load())
		assert.Equal(t, 0, cache.Len(), "error results must not be cached")
	})

	t.Run("failed result is retried on the next call", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) <= 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, "<html>ok</html>")
		}))
		defer srv.Close()

		s, _ := newTestScraper(&stubExtractor{title: "T", text: "recovered"}, nil, ScraperConfig{Retries: 3})

		first := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.True(t, first.Failed())

		second := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		require.False(t, second.Failed())
		assert.Equal(t, "recovered", second.Content)
	})

	t.Run("stale cache entries are refetched", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{title: "T", text: "body"}, nil, ScraperConfig{
			CacheTTL: 20 * time.Millisecond,
		})

		s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.Equal(t, int32(1), hits.Load())

		time.Sleep(30 * time.Millisecond)
		s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("extraction failure is a failed record", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{err: domain.ErrNoContent}, nil, ScraperConfig{Retries: 2})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.True(t, got.Failed())
		assert.Contains(t, got.Error, "no extractable content")
	})
}

func TestScraperReduce(t *testing.T) {
	t.Run("full mode truncates at the maximum length", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		long := strings.Repeat("x", 20000)
		s, _ := newTestScraper(&stubExtractor{title: "T", text: long}, nil, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeFull, 0)
		marker := "[Content truncated at 10000 characters]"
		assert.Len(t, got.Content, 10000+len(marker))
		assert.True(t, strings.HasSuffix(got.Content, marker))
	})

	t.Run("full mode honours an explicit maximum", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{title: "T", text: strings.Repeat("x", 300)}, nil, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeFull, 100)
		assert.True(t, strings.HasPrefix(got.Content, strings.Repeat("x", 100)))
		assert.Contains(t, got.Content, "[Content truncated at 100 characters]")
	})

	t.Run("short full content passes through untouched", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{title: "T", text: "short"}, nil, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeFull, 0)
		assert.Equal(t, "short", got.Content)
	})

	t.Run("excerpt uses the summariser past the trigger threshold", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		sum := &stubSummariser{summary: "ai excerpt"}
		s, _ := newTestScraper(&stubExtractor{title: "T", text: strings.Repeat("x", 1600)}, sum, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.Equal(t, "ai excerpt", got.Content)
		assert.Equal(t, int32(1), sum.calls.Load())
	})

	t.Run("excerpt below the trigger truncates without the summariser", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		sum := &stubSummariser{summary: "unused"}
		s, _ := newTestScraper(&stubExtractor{title: "T", text: strings.Repeat("x", 1400)}, sum, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.Equal(t, strings.Repeat("x", 1000)+"...", got.Content)
		assert.Equal(t, int32(0), sum.calls.Load())
	})

	t.Run("summariser failure falls back to truncation", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		sum := &stubSummariser{err: errors.New("model unavailable")}
		s, _ := newTestScraper(&stubExtractor{title: "T", text: strings.Repeat("y", 1600)}, sum, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeExcerpt, 0)
		assert.Equal(t, strings.Repeat("y", 1000)+"...", got.Content)
	})

	t.Run("summary mode uses its own target and marker", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{title: "T", text: strings.Repeat("z", 7000)}, nil, ScraperConfig{})

		got := s.Fetch(context.Background(), srv.URL, domain.ContentModeSummary, 0)
		assert.True(t, strings.HasPrefix(got.Content, strings.Repeat("z", 5000)))
		assert.True(t, strings.HasSuffix(got.Content, summaryTruncationMarker))
	})
}

func TestScraperFetchMany(t *testing.T) {
	t.Run("results preserve input order", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{title: "T", text: "body"}, nil, ScraperConfig{BatchSize: 2})

		urls := []string{
			srv.URL + "/one",
			srv.URL + "/two",
			srv.URL + "/three",
			srv.URL + "/four",
			srv.URL + "/five",
		}
		results := s.FetchMany(context.Background(), urls, domain.ContentModeExcerpt, 0)

		require.Len(t, results, len(urls))
		for i, url := range urls {
			assert.Equal(t, url, results[i].URL)
		}
		assert.Equal(t, int32(5), hits.Load())
	})

	t.Run("one failing url does not affect siblings", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/bad") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, "<html>ok</html>")
		}))
		defer srv.Close()

		s, _ := newTestScraper(&stubExtractor{title: "T", text: "body"}, nil, ScraperConfig{Retries: 1})
		results := s.FetchMany(context.Background(),
			[]string{srv.URL + "/good", srv.URL + "/bad", srv.URL + "/also-good"},
			domain.ContentModeExcerpt, 0)

		require.Len(t, results, 3)
		assert.False(t, results[0].Failed())
		assert.True(t, results[1].Failed())
		assert.False(t, results[2].Failed())
	})

	t.Run("empty input is an empty result", func(t *testing.T) {
		s, _ := newTestScraper(&stubExtractor{}, nil, ScraperConfig{})
		assert.Empty(t, s.FetchMany(context.Background(), nil, domain.ContentModeExcerpt, 0))
	})
}

func TestScraperScrapeURL(t *testing.T) {
	t.Run("empty url is invalid input", func(t *testing.T) {
		s, _ := newTestScraper(&stubExtractor{}, nil, ScraperConfig{})
		_, err := s.ScrapeURL(context.Background(), "", domain.ScrapeOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("defaults to excerpt mode", func(t *testing.T) {
		var hits atomic.Int32
		srv := okServer(t, &hits)
		s, _ := newTestScraper(&stubExtractor{title: "T", text: strings.Repeat("x", 1200)}, nil, ScraperConfig{})

		got, err := s.ScrapeURL(context.Background(), srv.URL, domain.ScrapeOptions{})
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("x", 1000)+"...", got.Content)
	})
}

func TestScraperUpdateConfig(t *testing.T) {
	s, _ := newTestScraper(&stubExtractor{}, nil, ScraperConfig{})
	s.UpdateConfig(ScraperConfig{ExcerptLength: 50})

	cfg := s.config()
	assert.Equal(t, 50, cfg.ExcerptLength)
	assert.Equal(t, DefaultScrapeRetries, cfg.Retries, "unset fields fall back to defaults")
}
