package interfaces

import (
	"context"

	"github.com/ternarybob/onboard/internal/models"
)

// DocumentSource yields the raw onboarding documents the corpus index is built from
type DocumentSource interface {
	// Load reads every document currently available from the source.
	// A document that fails to parse aborts the load.
	Load(ctx context.Context) ([]models.SourceDocument, error)

	// Describe returns a short human-readable description for logs
	Describe() string
}
