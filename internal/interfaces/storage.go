package interfaces

import (
	"time"

	"github.com/ternarybob/onboard/internal/models"
)

// DocumentStorage - interface for processed document persistence
type DocumentStorage interface {
	// CRUD operations
	SaveDocument(doc *models.Document) error
	SaveDocuments(docs []*models.Document) error
	GetDocument(id string) (*models.Document, error)
	DeleteDocument(id string) error

	// List operations
	ListDocuments(opts *ListOptions) ([]*models.Document, error)
	CountDocuments() (int, error)

	// ReplaceAll swaps the stored set for docs, deleting anything not in it
	ReplaceAll(docs []*models.Document) error

	// Bulk operations
	ClearAll() error
}

// InteractionStorage - interface for the query interaction log
type InteractionStorage interface {
	SaveInteraction(interaction *models.Interaction) error
	GetInteraction(id string) (*models.Interaction, error)
	ListInteractions(opts *ListOptions) ([]*models.Interaction, error)
	ListBySession(sessionID string, limit int) ([]*models.Interaction, error)
	CountInteractions() (int, error)
	DeleteOlderThan(cutoff time.Time) (int, error)
}

// ListOptions contains options for listing stored records
type ListOptions struct {
	BusinessRole string
	Limit        int
	Offset       int
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	DocumentStorage() DocumentStorage
	InteractionStorage() InteractionStorage
	EmbeddingCache() EmbeddingCache
	DB() interface{}
	Close() error
}
