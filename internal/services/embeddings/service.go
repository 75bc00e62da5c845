package embeddings

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/services/llm"
)

// NewEmbeddingService creates the configured embedding provider
func NewEmbeddingService(cfg *common.Config, factory *llm.ProviderFactory, logger arbor.ILogger) (interfaces.EmbeddingService, error) {
	switch cfg.Embeddings.Provider {
	case common.EmbeddingProviderLocal:
		logger.Info().
			Int("dimension", cfg.Embeddings.Dimension).
			Msg("Using local hashing embedder")
		return NewLocalEmbedder(cfg.Embeddings.Dimension), nil

	case common.EmbeddingProviderGemini:
		if !factory.HasCredentials(llm.ProviderGemini) {
			return nil, fmt.Errorf("embeddings.provider is gemini but no Gemini API key is configured: %w", llm.ErrMissingAPIKey)
		}
		embedder := NewGeminiEmbedder(&cfg.Embeddings, factory, logger)
		logger.Info().
			Str("model", embedder.ModelName()).
			Int("dimension", embedder.Dimension()).
			Msg("Using Gemini embedder")
		return embedder, nil

	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Embeddings.Provider)
	}
}
