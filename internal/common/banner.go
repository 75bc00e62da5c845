package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective runtime settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("Onboard", GetVersion())

	logger.Info().
		Str("version", GetVersion()).
		Str("environment", config.Environment).
		Str("llm_provider", string(config.LLM.DefaultProvider)).
		Str("embeddings", string(config.Embeddings.Provider)).
		Str("documents_dir", config.Documents.Dir).
		Int("history_turns", config.Chat.HistoryTurns).
		Msg("Onboard starting")
}
