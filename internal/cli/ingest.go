package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"mantis/internal/adapter/chunker"
	"mantis/internal/adapter/extractor"
	"mantis/internal/adapter/fs"
	"mantis/internal/adapter/store"
	"mantis/internal/domain"
	"mantis/internal/logging"
	"mantis/internal/port"
	"mantis/internal/usecase"
)

var (
	ingestOutput  string
	ingestWorkers int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [manuals-dir]",
	Short: "Build the knowledge base from a folder of manuals",
	Long: `Extract every manual (PDF via pdftotext, or pre-extracted .txt with form feeds
between pages) into one chunk per non-empty page, tag each page with the platform
named in its file name, and save the result.

Examples:
  mantis ingest                         # ./Manuals -> data/knowledge_base.json
  mantis ingest /srv/manuals -o kb.db   # store in bbolt instead of JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "knowledge base file, .json or .db (default from config)")
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "parallel extractions (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()

	manualsDir := cfg.Ingest.ManualsDir
	if len(args) > 0 {
		var err error
		manualsDir, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}
	outPath := cfg.KnowledgeBase.Path
	if ingestOutput != "" {
		outPath = ingestOutput
	}
	workers := cfg.Ingest.Workers
	if ingestWorkers > 0 {
		workers = ingestWorkers
	}

	st, err := store.Open(outPath, true)
	if err != nil {
		return fmt.Errorf("failed to open knowledge base store: %w", err)
	}
	defer st.Close()

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	ingestUC := usecase.NewIngestUseCase(
		walker,
		extractor.New(extractor.ExecRunner{}, cfg.Ingest.Extractor),
		chunker.NewPageChunker(),
		st,
		workers,
		logging.Component(log, "ingest"),
	)

	files, err := ingestUC.Discover(manualsDir)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d manual(s) in %s\n", len(files), manualsDir)
	if len(files) == 0 {
		fmt.Println("No content extracted. Check your manuals folder.")
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Extracting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	ingestUC.OnFile = func(f port.FileInfo, pages int, err error) {
		bar.Add(1)
	}

	result, err := ingestUC.Ingest(cmd.Context(), manualsDir)
	if errors.Is(err, domain.ErrEmptyKnowledgeBase) {
		fmt.Println("\nNo content extracted. Check your manuals folder.")
		printFailures(result)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nSaved %d chunks to %s\n", len(result.Chunks), st.Path())
	fmt.Println("\nPlatform Distribution:")
	for _, line := range platformDistribution(result.Stats) {
		fmt.Println(line)
	}
	printFailures(result)

	if info, err := os.Stat(st.Path()); err == nil {
		fmt.Printf("\nKnowledge base size: %.1f KB\n", float64(info.Size())/1024)
	}
	fmt.Printf("Ingestion complete in %s\n", formatDuration(result.Duration))
	return nil
}

func printFailures(result *usecase.IngestResult) {
	if result == nil || len(result.Failed) == 0 {
		return
	}
	names := make([]string, 0, len(result.Failed))
	for name := range result.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\nWarnings:\n")
	for _, name := range names {
		fmt.Printf("  - %s: %v\n", name, result.Failed[name])
	}
}

// platformDistribution lists chunk counts per platform in tag order.
func platformDistribution(stats domain.Stats) []string {
	platforms := make([]string, 0, len(stats.ByPlatform))
	for p := range stats.ByPlatform {
		platforms = append(platforms, string(p))
	}
	sort.Strings(platforms)

	lines := make([]string, 0, len(platforms))
	for _, p := range platforms {
		lines = append(lines, fmt.Sprintf("  - %s: %d chunks", p, stats.ByPlatform[domain.Platform(p)]))
	}
	return lines
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
