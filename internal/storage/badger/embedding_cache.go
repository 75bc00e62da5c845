package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// EmbeddingCache stores document embeddings so unchanged documents are not
// re-embedded on every rebuild
type EmbeddingCache struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewEmbeddingCache creates a new EmbeddingCache instance
func NewEmbeddingCache(db *BadgerDB, logger arbor.ILogger) interfaces.EmbeddingCache {
	return &EmbeddingCache{
		db:     db,
		logger: logger,
	}
}

// GetEmbedding returns the cached vector for key. A miss is not an error.
func (c *EmbeddingCache) GetEmbedding(key string) ([]float32, bool, error) {
	var record models.EmbeddingRecord
	if err := c.db.Store().Get(key, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get embedding: %w", err)
	}
	return record.Vector, true, nil
}

func (c *EmbeddingCache) SaveEmbedding(key, model string, vector []float32) error {
	if key == "" {
		return fmt.Errorf("embedding key is required")
	}

	record := &models.EmbeddingRecord{
		Key:       key,
		Model:     model,
		Vector:    vector,
		CreatedAt: time.Now(),
	}
	if err := c.db.Store().Upsert(key, record); err != nil {
		return fmt.Errorf("failed to save embedding: %w", err)
	}
	return nil
}

// ClearEmbeddings drops every cached vector and returns how many were removed
func (c *EmbeddingCache) ClearEmbeddings() (int, error) {
	count, err := c.db.Store().Count(&models.EmbeddingRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	if err := c.db.Store().DeleteMatching(&models.EmbeddingRecord{}, nil); err != nil {
		return 0, fmt.Errorf("failed to clear embeddings: %w", err)
	}
	return int(count), nil
}
