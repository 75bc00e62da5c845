package badger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func stampDocument(doc *models.Document, now time.Time) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return nil
}

func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if err := stampDocument(doc, time.Now()); err != nil {
		return err
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// SaveDocuments upserts docs in a single transaction
func (s *DocumentStorage) SaveDocuments(docs []*models.Document) error {
	now := time.Now()
	for _, doc := range docs {
		if err := stampDocument(doc, now); err != nil {
			return err
		}
	}

	store := s.db.Store()
	err := store.Badger().Update(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := store.TxUpsert(tx, doc.ID, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save documents: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) DeleteDocument(id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// ListDocuments returns documents ordered by ID. A BusinessRole filter keeps
// documents for that role plus the ones without a role, which apply to everyone.
func (s *DocumentStorage) ListDocuments(opts *interfaces.ListOptions) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("ID").Ne("").SortBy("ID")); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.Document, 0, len(docs))
	for i := range docs {
		if opts != nil && opts.BusinessRole != "" {
			role := docs[i].Metadata.BusinessRole
			if role != "" && !strings.EqualFold(role, opts.BusinessRole) {
				continue
			}
		}
		result = append(result, &docs[i])
	}

	if opts != nil {
		if opts.Offset > 0 {
			if opts.Offset >= len(result) {
				return []*models.Document{}, nil
			}
			result = result[opts.Offset:]
		}
		if opts.Limit > 0 && opts.Limit < len(result) {
			result = result[:opts.Limit]
		}
	}
	return result, nil
}

func (s *DocumentStorage) CountDocuments() (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

// ReplaceAll makes docs the whole stored set. Documents that disappeared from
// the source are deleted; CreatedAt survives for documents that remain.
func (s *DocumentStorage) ReplaceAll(docs []*models.Document) error {
	now := time.Now()
	keep := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if err := stampDocument(doc, now); err != nil {
			return err
		}
		keep[doc.ID] = struct{}{}
	}

	store := s.db.Store()
	err := store.Badger().Update(func(tx *badger.Txn) error {
		var existing []models.Document
		if err := store.TxFind(tx, &existing, badgerhold.Where("ID").Ne("")); err != nil {
			return err
		}

		created := make(map[string]time.Time, len(existing))
		for _, old := range existing {
			if _, ok := keep[old.ID]; !ok {
				if err := store.TxDelete(tx, old.ID, &models.Document{}); err != nil {
					return err
				}
				continue
			}
			created[old.ID] = old.CreatedAt
		}

		for _, doc := range docs {
			if at, ok := created[doc.ID]; ok && !at.IsZero() {
				doc.CreatedAt = at
			}
			if err := store.TxUpsert(tx, doc.ID, doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace documents: %w", err)
	}

	s.logger.Debug().Int("documents", len(docs)).Msg("Stored document set replaced")
	return nil
}

func (s *DocumentStorage) ClearAll() error {
	return s.db.Store().DeleteMatching(&models.Document{}, nil)
}
