package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/services/llm"
	"google.golang.org/genai"
)

// GeminiEmbedder produces embeddings with the Gemini embedding endpoint.
// Calls share the Gemini rate limiter and timeout with chat.
type GeminiEmbedder struct {
	factory   *llm.ProviderFactory
	model     string
	dimension int
	batchSize int
	logger    arbor.ILogger
}

// NewGeminiEmbedder creates a Gemini embedder from the embeddings configuration
func NewGeminiEmbedder(cfg *common.EmbeddingsConfig, factory *llm.ProviderFactory, logger arbor.ILogger) *GeminiEmbedder {
	model := cfg.Model
	if model == "" {
		model = "gemini-embedding-001"
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	return &GeminiEmbedder{
		factory:   factory,
		model:     model,
		dimension: cfg.Dimension,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Embed returns one vector per text. Texts are sent in batches of batch_size.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	startTime := time.Now()
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vectors, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}

	e.logger.Debug().
		Str("model", e.model).
		Int("texts", len(texts)).
		Int("dimension", e.dimension).
		Dur("duration", time.Since(startTime)).
		Msg("Embeddings generated")

	return out, nil
}

func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(e.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	var result *genai.EmbedContentResponse
	err := e.factory.CallGemini(ctx, func(callCtx context.Context, client *genai.Client) error {
		var callErr error
		result, callErr = client.Models.EmbedContent(callCtx, e.model, contents, config)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) != e.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch at %d: expected %d", i, e.dimension)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// ModelName returns the model name
func (e *GeminiEmbedder) ModelName() string {
	return e.model
}

// Dimension returns the embedding dimension
func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}
