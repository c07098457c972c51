package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mantis/internal/usecase"
)

var promptQuery string

var promptCmd = &cobra.Command{
	Use:   "prompt [question]",
	Short: "Print the model prompt for a question without sending it",
	Long: `Run the platform guard, retrieval, and context assembly, then print the exact
prompt the model would receive. Guarded or unmatched questions print the reply
the user would see instead.

Examples:
  mantis prompt -q "AH-1 oil pressure"
  mantis prompt "F-16 engine start"      # prints the unsupported-platform reply`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().StringVarP(&promptQuery, "query", "q", "", "question")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	q, err := queryFromArgs(promptQuery, args)
	if err != nil {
		return err
	}

	a, err := newApp(GetConfig(), GetLogger())
	if err != nil {
		return err
	}

	ans, err := a.answer.Prepare(q)
	if err != nil {
		return err
	}
	if ans.Outcome != usecase.OutcomeAnswered {
		fmt.Println(ans.Text)
		return nil
	}
	fmt.Print(ans.Prompt)
	return nil
}
