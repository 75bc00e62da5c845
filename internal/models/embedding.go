package models

import (
	"time"
)

// EmbeddingRecord caches a document embedding keyed by model, dimension and content hash
type EmbeddingRecord struct {
	Key       string    `json:"key"`
	Model     string    `json:"model"`
	Vector    []float32 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}
