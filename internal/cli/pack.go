package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	packQuery  string
	packOutput string
	packTopK   int
)

var packCmd = &cobra.Command{
	Use:   "pack [question]",
	Short: "Assemble the cited context for a question",
	Long: `Retrieve pages for a question and emit the context block the model would see,
with per-snippet citations and an estimated token count, as JSON.

Examples:
  mantis pack -q "AH-1 oil pressure"
  mantis pack -q "UH-60 tail rotor" -k 5 -o context.json`,
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packQuery, "query", "q", "", "search query")
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output file (default: stdout)")
	packCmd.Flags().IntVarP(&packTopK, "top-k", "k", 0, "number of pages (default from config)")
}

func runPack(cmd *cobra.Command, args []string) error {
	q, err := queryFromArgs(packQuery, args)
	if err != nil {
		return err
	}

	a, err := newApp(GetConfig(), GetLogger())
	if err != nil {
		return err
	}

	hits, err := a.retrieve.Retrieve(q, packTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	if len(hits) == 0 {
		fmt.Fprintln(os.Stderr, "No relevant content found.")
	}

	packed := a.packer.Pack(q, hits)

	output, err := json.MarshalIndent(packed, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if packOutput != "" {
		if err := os.WriteFile(packOutput, output, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Context packed to: %s\n", packOutput)
		fmt.Printf("  Snippets: %d\n", len(packed.Snippets))
		fmt.Printf("  Tokens:   ~%d\n", packed.EstimatedTokens)
	} else {
		fmt.Println(string(output))
	}
	return nil
}
