package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/onboard/internal/app"
	"github.com/ternarybob/onboard/internal/common"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the document index once and print its stats",
	Long:  `Loads every supported document, rebuilds the index, persists the document set to storage and exits.`,
	RunE:  runIngest,
}

var (
	ingestDocs string
	ingestJSON bool
)

func init() {
	ingestCmd.Flags().StringVar(&ingestDocs, "docs", "", "Documents directory (overrides config)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "Print stats as JSON")
}

func runIngest(cmd *cobra.Command, args []string) error {
	common.ApplyFlagOverrides(config, 0, "", ingestDocs)
	config.Ingest.OnStartup = false

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	stats, err := application.IngestService.Reingest(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Indexed %d documents (%d chunks, %d terms) from %s\n",
		stats.Documents, stats.Chunks, stats.Vocabulary, config.Documents.Dir)
	fmt.Printf("Embeddings: %s (%d dimensions)\n", stats.EmbeddingModel, stats.EmbeddingDim)
	return nil
}
