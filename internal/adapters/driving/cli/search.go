package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/ferndale-labs/marque/internal/core/domain"
)

var (
	searchAddr string
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchAddr, "addr", "http://127.0.0.1:1729", "server address")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(searchAddr + "/api/search?query=" + url.QueryEscape(args[0]))
	if err != nil {
		return fmt.Errorf("querying server: %w", err)
	}

	var results []domain.SearchResult
	if err := decodeResponse(resp, &results); err != nil {
		return err
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, res := range results {
		title := res.Title
		if title == "" {
			title = res.URL
		}
		cmd.Printf("  [%d] %s (distance %.4f)\n", i+1, title, res.Distance)
		cmd.Printf("      %s\n", res.URL)
		if snippet := preview(res.Snippet); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
	}
	return nil
}

// preview truncates a snippet for terminal display.
func preview(snippet string) string {
	const max = 200
	if len(snippet) > max {
		return snippet[:max] + "..."
	}
	return snippet
}
