package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
)

var (
	// Repeated --config flags; later files override earlier ones
	configFiles []string
	logLevel    string

	// Global state, resolved before any subcommand runs
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:   "onboard",
	Short: "HR onboarding assistant",
	Long: `Onboard answers new-hire questions from a folder of HR documents.
Queries are classified, matched against the document corpus and answered
either with the matched document text or with a model-composed reply.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration (defaults -> file1 -> file2 -> ... -> env -> flags)
// and initializes the logger
func loadConfig(cmd *cobra.Command, args []string) error {
	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("onboard.toml"); err == nil {
			configFiles = append(configFiles, "onboard.toml")
		} else if _, err := os.Stat("deployments/local/onboard.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/onboard.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration %v: %w", configFiles, err)
	}

	if logLevel != "" {
		config.Logging.Level = logLevel
	}

	logger = common.InitLogger(config)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Str("documents_dir", config.Documents.Dir).
		Str("badger_path", config.Storage.Badger.Path).
		Msg("Resolved configuration")

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
