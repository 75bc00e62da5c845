package interfaces

import (
	"context"
)

// EmbeddingService generates dense vector embeddings
type EmbeddingService interface {
	// Embed returns one vector per input text, in input order.
	// Vectors are not required to be normalized.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Get model information
	ModelName() string
	Dimension() int
}

// EmbeddingCache persists document embeddings keyed by model and content hash
type EmbeddingCache interface {
	GetEmbedding(key string) ([]float32, bool, error)
	SaveEmbedding(key, model string, vector []float32) error
	ClearEmbeddings() (int, error)
}
