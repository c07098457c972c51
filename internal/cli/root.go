package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mantis/config"
	"mantis/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	verbose bool
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mantis",
	Short: "MANTIS - answer maintenance questions from field manuals",
	Long: `MANTIS extracts technical manuals into a page-level knowledge base, ranks pages
against a question with platform-aware keyword scoring, and asks a local
KoboldCPP model to answer from the cited pages only.

Example usage:
  mantis ingest                          # Build data/knowledge_base.json from ./Manuals
  mantis query -q "AH-1 oil pressure"    # Show the ranked pages
  mantis ask "RC-12 fuel capacity"       # One-shot answer
  mantis chat                            # Interactive session`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger = logging.New(cfg.Logging)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mantis.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func GetLogger() *logrus.Logger {
	if logger == nil {
		logger = logging.New(config.LoggingConfig{Level: "info"})
	}
	return logger
}
