package handlers

import (
	"context"

	"github.com/ternarybob/onboard/internal/services/chat"
	"github.com/ternarybob/onboard/internal/services/corpus"
	"github.com/ternarybob/onboard/internal/services/ingest"
)

// QueryAnswerer answers one query within a session
type QueryAnswerer interface {
	HandleQuery(ctx context.Context, query string, session *chat.Session) (*chat.Answer, error)
}

// SessionProvider resolves chat sessions by id
type SessionProvider interface {
	GetOrCreate(id string) *chat.Session
	Delete(id string)
}

// Reindexer rebuilds the corpus index on demand
type Reindexer interface {
	Reingest(ctx context.Context) (corpus.Stats, error)
	Status() ingest.Status
}

// IndexProvider exposes the currently published index
type IndexProvider interface {
	Load() *corpus.Index
}
