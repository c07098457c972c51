package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Show the pages ranked for a question",
	Long: `Rank knowledge base pages with platform-aware keyword scoring and print the
hits without calling the model.

Examples:
  mantis query -q "AH-1 oil pressure"
  mantis query -q "RC-12 fuel capacity" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
}

type queryResult struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Page     int    `json:"page"`
	Platform string `json:"platform"`
	Score    int    `json:"score"`
	Text     string `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	q, err := queryFromArgs(queryText, args)
	if err != nil {
		return err
	}

	a, err := newApp(GetConfig(), GetLogger())
	if err != nil {
		return err
	}

	hits, err := a.retrieve.Retrieve(q, queryTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]queryResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, queryResult{
			ID:       h.Chunk.ID,
			Source:   h.Chunk.Source,
			Page:     h.Chunk.Page,
			Platform: string(h.Chunk.Platform),
			Score:    h.Score,
			Text:     h.Chunk.Text,
		})
	}

	if queryJSON {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s\n\n", len(results), q)
	for i, r := range results {
		fmt.Printf("--- [%d] %s - Page %d [%s] (score: %d) ---\n", i+1, r.Source, r.Page, r.Platform, r.Score)
		text := []rune(r.Text)
		if len(text) > 500 {
			fmt.Println(string(text[:500]) + "...")
		} else {
			fmt.Println(r.Text)
		}
		fmt.Println()
	}
	return nil
}
