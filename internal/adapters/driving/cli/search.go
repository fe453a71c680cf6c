package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
)

var (
	searchJSON    bool
	searchSources bool
)

// Styles for terminal output. Rendered plain when stdout is not a TTY.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	citationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a grounded web search",
	Long: `Runs a single grounded web search and prints the citation-annotated
answer with its numbered source list.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output the response as JSON")
	searchCmd.Flags().BoolVar(&searchSources, "sources", false, "include the raw source list")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	defer closeServices()
	query := args[0]

	if searchSources {
		detail, err := searchService.SearchWithSources(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return outputJSON(cmd, detail)
		}
		outputAnswer(cmd, detail.Summary, detail.Citations)
		outputSourceList(cmd, detail.Sources)
		return nil
	}

	resp, err := searchService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchJSON {
		return outputJSON(cmd, resp)
	}
	outputAnswer(cmd, resp.Summary, resp.Citations)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, summary string, citations []domain.Citation) {
	cmd.Println(summary)

	if len(citations) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(styled(titleStyle, "Citations:"))
	for _, c := range citations {
		cmd.Printf("  %s %s\n", styled(citationStyle, fmt.Sprintf("[%d]", c.Number)), c.Title)
		cmd.Printf("      %s\n", styled(mutedStyle, c.URL))
	}
}

func outputSourceList(cmd *cobra.Command, sources []domain.SearchResultDetail) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(styled(titleStyle, "Sources:"))
	for i, src := range sources {
		cmd.Printf("  %s %s\n", styled(citationStyle, fmt.Sprintf("[%d]", i+1)), src.Title)
		cmd.Printf("      %s\n", styled(mutedStyle, src.URL))
		if src.Snippet != "" {
			cmd.Printf("      %s\n", src.Snippet)
		}
	}
}

// styled renders s with the given style on a terminal, plain otherwise.
func styled(style lipgloss.Style, s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return style.Render(s)
}
