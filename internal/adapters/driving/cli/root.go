// Package cli provides the command line interface for grounder.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/grounder-cli/internal/adapters/driven/auth"
	configfile "github.com/custodia-labs/grounder-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/grounder-cli/internal/adapters/driven/extractor"
	"github.com/custodia-labs/grounder-cli/internal/adapters/driven/gemini"
	"github.com/custodia-labs/grounder-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/grounder-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/grounder-cli/internal/core/ports/driven"
	"github.com/custodia-labs/grounder-cli/internal/core/services"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired at startup and shared by the commands.
var (
	configStore   *configfile.ConfigStore
	settings      configfile.Settings
	scraper       *services.Scraper
	searchService *services.SearchService
	scrapeCache   driven.ScrapeCache
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "grounder",
	Short: "Grounded web search with citations",
	Long: `Grounder answers questions with Google-grounded generation, reconciling
the model's grounding metadata into inline [n] citation markers, and can
fetch and reduce the readable content behind each cited source.

Run it as an MCP server for AI assistants, or use the one-shot search and
scrape commands directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		// Version needs no credentials.
		if cmd.Name() == "version" {
			return nil
		}
		return initServices(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initServices wires the adapters and core services. Called once before any
// command runs.
func initServices(ctx context.Context) error {
	var err error
	configStore, err = configfile.NewConfigStore("")
	if err != nil {
		logger.Warn("config store unavailable: %v", err)
		configStore = nil
	}
	settings = configfile.ResolveSettings(configStore)

	credStore, err := auth.NewFileCredentialsStore("")
	if err != nil {
		return fmt.Errorf("opening credentials store: %w", err)
	}

	provider, err := auth.NewTokenProvider(ctx, settings.APIKey, credStore)
	if err != nil {
		return err
	}

	client := gemini.NewClient(provider, gemini.ClientConfig{
		Model:  settings.Model,
		APIKey: settings.APIKey,
	})

	if settings.CachePath != "" {
		cache, cacheErr := sqlite.NewScrapeCache(settings.CachePath)
		if cacheErr != nil {
			logger.Warn("persistent cache unavailable, using memory: %v", cacheErr)
			scrapeCache = memory.NewScrapeCache()
		} else {
			scrapeCache = cache
		}
	} else {
		scrapeCache = memory.NewScrapeCache()
	}

	scraper = services.NewScraper(scrapeCache, extractor.New(), client, settings.Scraper)
	searchService = services.NewSearchService(client, scraper)
	return nil
}

// closeServices releases held resources. Called when a command finishes.
func closeServices() {
	if scrapeCache != nil {
		if err := scrapeCache.Close(); err != nil {
			logger.Warn("closing cache: %v", err)
		}
	}
}
