package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db          *BadgerDB
	document    interfaces.DocumentStorage
	interaction interfaces.InteractionStorage
	embeddings  interfaces.EmbeddingCache
	logger      arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:          db,
		document:    NewDocumentStorage(db, logger),
		interaction: NewInteractionStorage(db, logger),
		embeddings:  NewEmbeddingCache(db, logger),
		logger:      logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// DocumentStorage returns the Document storage interface
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.document
}

// InteractionStorage returns the Interaction storage interface
func (m *Manager) InteractionStorage() interfaces.InteractionStorage {
	return m.interaction
}

// EmbeddingCache returns the embedding cache
func (m *Manager) EmbeddingCache() interfaces.EmbeddingCache {
	return m.embeddings
}

// DB returns the underlying database connection
func (m *Manager) DB() interface{} {
	if m.db != nil {
		return m.db.Store()
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
