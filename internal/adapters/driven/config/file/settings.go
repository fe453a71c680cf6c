package file

import (
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/grounder-cli/internal/core/services"
)

// Environment variable names. Environment values take precedence over the
// config file, which takes precedence over built-in defaults.
const (
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvModel           = "GROUNDER_MODEL"
	EnvBatchSize       = "GROUNDER_BATCH_SIZE"
	EnvBatchDelayMS    = "GROUNDER_BATCH_DELAY_MS"
	EnvCacheTTLSeconds = "GROUNDER_CACHE_TTL_SECONDS"
	EnvScrapeTimeoutMS = "GROUNDER_SCRAPE_TIMEOUT_MS"
	EnvScrapeRetries   = "GROUNDER_SCRAPE_RETRIES"
	EnvExcerptLength   = "GROUNDER_EXCERPT_LENGTH"
	EnvSummaryLength   = "GROUNDER_SUMMARY_LENGTH"
	EnvCachePath       = "GROUNDER_CACHE_PATH"
)

// Settings holds the resolved runtime configuration.
type Settings struct {
	// APIKey selects api-key auth when non-empty.
	APIKey string
	// Model is the generation model id.
	Model string
	// CachePath enables the persistent sqlite scrape cache when non-empty.
	CachePath string
	// Scraper holds the content pipeline knobs.
	Scraper services.ScraperConfig
}

// ResolveSettings layers environment variables over the config store over
// defaults. store may be nil, in which case only environment and defaults
// apply.
func ResolveSettings(store *ConfigStore) Settings {
	s := Settings{
		APIKey:    envOr(EnvAPIKey, storeString(store, "api_key")),
		Model:     envOr(EnvModel, storeString(store, "model")),
		CachePath: envOr(EnvCachePath, storeString(store, "cache_path")),
		Scraper: services.ScraperConfig{
			Timeout:       time.Duration(envOrInt(EnvScrapeTimeoutMS, storeInt(store, "scrape_timeout_ms"))) * time.Millisecond,
			Retries:       envOrInt(EnvScrapeRetries, storeInt(store, "scrape_retries")),
			BatchSize:     envOrInt(EnvBatchSize, storeInt(store, "batch_size")),
			BatchDelay:    time.Duration(envOrInt(EnvBatchDelayMS, storeInt(store, "batch_delay_ms"))) * time.Millisecond,
			CacheTTL:      time.Duration(envOrInt(EnvCacheTTLSeconds, storeInt(store, "cache_ttl_seconds"))) * time.Second,
			ExcerptLength: envOrInt(EnvExcerptLength, storeInt(store, "excerpt_length")),
			SummaryLength: envOrInt(EnvSummaryLength, storeInt(store, "summary_length")),
		},
	}
	return s
}

func storeString(store *ConfigStore, key string) string {
	if store == nil {
		return ""
	}
	return store.GetString(key)
}

func storeInt(store *ConfigStore, key string) int {
	if store == nil {
		return 0
	}
	return store.GetInt(key)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envOrInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
