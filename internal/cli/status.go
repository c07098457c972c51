package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mantis/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge base and model server status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(GetConfig(), GetLogger())
	if err != nil {
		return err
	}
	st := newStyles(stdoutIsTerminal())

	kb := a.corpus.Snapshot()
	fmt.Println(st.Title.Render("Knowledge Base"))
	fmt.Printf("  Path:   %s\n", kb.Origin)
	fmt.Printf("  Chunks: %d\n", kb.Len())
	for _, line := range platformDistribution(domain.ComputeStats(kb.Chunks)) {
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println(st.Title.Render("Model Server"))
	fmt.Printf("  URL:    %s\n", a.generator.BaseURL())

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if model, err := a.generator.ModelName(ctx); err != nil {
		fmt.Printf("  State:  %s\n", st.Error.Render("offline"))
		GetLogger().WithError(err).Debug("model server check failed")
	} else {
		fmt.Printf("  State:  %s\n", st.Success.Render("online"))
		fmt.Printf("  Model:  %s\n", model)
	}
	return nil
}
