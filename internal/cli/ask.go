package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mantis/internal/usecase"
)

var (
	askQuery string
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the manuals",
	Long: `Answer a single question using the retrieved manual pages as the only context,
then list the pages that were cited.

Examples:
  mantis ask "AH-1 oil pressure limits"
  mantis ask -q "RC-12 fuel capacity" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
}

type askOutput struct {
	Query   string        `json:"query"`
	Outcome string        `json:"outcome"`
	Answer  string        `json:"answer"`
	Sources []queryResult `json:"sources,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	q, err := queryFromArgs(askQuery, args)
	if err != nil {
		return err
	}

	a, err := newApp(GetConfig(), GetLogger())
	if err != nil {
		return err
	}

	ans, err := a.answer.Answer(cmd.Context(), q)
	if err != nil {
		GetLogger().WithError(err).Debug("answer failed")
		return errors.New(describeGenerationError(err, a.generator.BaseURL()))
	}

	if askJSON {
		return writeAskJSON(os.Stdout, ans)
	}
	printAnswer(os.Stdout, newStyles(stdoutIsTerminal()), ans)
	return nil
}

func writeAskJSON(w io.Writer, ans usecase.Answer) error {
	out := askOutput{
		Query:   ans.Query,
		Outcome: ans.Outcome.String(),
		Answer:  ans.Text,
	}
	for _, s := range ans.Sources {
		out.Sources = append(out.Sources, queryResult{
			ID:       s.Chunk.ID,
			Source:   s.Chunk.Source,
			Page:     s.Chunk.Page,
			Platform: string(s.Chunk.Platform),
			Score:    s.Score,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// printAnswer renders an answer the same way for ask and chat.
func printAnswer(w io.Writer, st styles, ans usecase.Answer) {
	const label = "Assistant:"
	fmt.Fprintf(w, "\n%s %s\n", st.Assistant.Render(label), indent(ans.Text, len(label)+1))
	if ans.Outcome == usecase.OutcomeAnswered && len(ans.Sources) > 0 {
		fmt.Fprintln(w, st.Muted.Render(fmt.Sprintf("[Sources: %d chunks from knowledge base]", len(ans.Sources))))
	}
}
