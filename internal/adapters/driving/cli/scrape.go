package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

var (
	scrapeMode      string
	scrapeMaxLength int
	scrapeJSON      bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url]",
	Short: "Fetch a URL and extract its readable content",
	Long: `Fetches a URL with bounded retries, extracts the readable article and
prints it reduced per the chosen content mode.

Modes:
  excerpt  short extract, AI-condensed when long (default)
  summary  longer extract, AI-condensed when long
  full     full text, truncated at --max-length characters`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeMode, "mode", "excerpt", "content mode: excerpt, summary or full")
	scrapeCmd.Flags().IntVar(&scrapeMaxLength, "max-length", 0, "maximum characters in full mode")
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	defer closeServices()
	url := args[0]

	mode, err := domain.ParseContentMode(scrapeMode)
	if err != nil {
		return err
	}

	opts := domain.ScrapeOptions{
		Mode:             mode,
		MaxContentLength: scrapeMaxLength,
	}

	content, err := scraper.ScrapeURL(cmd.Context(), url, opts)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if scrapeJSON {
		return outputJSON(cmd, content)
	}

	if content.Failed() {
		return fmt.Errorf("scrape %s: %s", url, content.Error)
	}

	cmd.Println(styled(titleStyle, content.Title))
	cmd.Println(styled(mutedStyle, content.URL))
	cmd.Println()
	cmd.Println(content.Content)
	return nil
}
