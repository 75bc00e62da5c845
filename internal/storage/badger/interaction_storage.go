package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// InteractionStorage implements the InteractionStorage interface for Badger
type InteractionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewInteractionStorage creates a new InteractionStorage instance
func NewInteractionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.InteractionStorage {
	return &InteractionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *InteractionStorage) SaveInteraction(interaction *models.Interaction) error {
	if interaction == nil {
		return fmt.Errorf("interaction is required")
	}
	if interaction.ID == "" {
		interaction.ID = common.NewInteractionID()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(interaction.ID, interaction); err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

func (s *InteractionStorage) GetInteraction(id string) (*models.Interaction, error) {
	var interaction models.Interaction
	if err := s.db.Store().Get(id, &interaction); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("interaction not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}
	return &interaction, nil
}

// ListInteractions returns interactions newest first
func (s *InteractionStorage) ListInteractions(opts *interfaces.ListOptions) ([]*models.Interaction, error) {
	query := badgerhold.Where("ID").Ne("") // Select all

	if opts != nil {
		if opts.BusinessRole != "" {
			query = query.And("BusinessRole").Eq(opts.BusinessRole)
		}
	}
	query = query.SortBy("CreatedAt").Reverse()
	if opts != nil {
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}

	var interactions []models.Interaction
	if err := s.db.Store().Find(&interactions, query); err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	return toInteractionPointers(interactions), nil
}

// ListBySession returns the most recent interactions of one session, newest first
func (s *InteractionStorage) ListBySession(sessionID string, limit int) ([]*models.Interaction, error) {
	query := badgerhold.Where("SessionID").Eq(sessionID).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var interactions []models.Interaction
	if err := s.db.Store().Find(&interactions, query); err != nil {
		return nil, fmt.Errorf("failed to list session interactions: %w", err)
	}
	return toInteractionPointers(interactions), nil
}

func (s *InteractionStorage) CountInteractions() (int, error) {
	count, err := s.db.Store().Count(&models.Interaction{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return int(count), nil
}

// DeleteOlderThan removes interactions created before cutoff and returns how many went
func (s *InteractionStorage) DeleteOlderThan(cutoff time.Time) (int, error) {
	query := badgerhold.Where("CreatedAt").Lt(cutoff)

	count, err := s.db.Store().Count(&models.Interaction{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count old interactions: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&models.Interaction{}, badgerhold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to delete old interactions: %w", err)
	}

	s.logger.Debug().Int("deleted", int(count)).Str("cutoff", cutoff.Format(time.RFC3339)).Msg("Pruned interaction log")
	return int(count), nil
}

func toInteractionPointers(interactions []models.Interaction) []*models.Interaction {
	result := make([]*models.Interaction, len(interactions))
	for i := range interactions {
		result[i] = &interactions[i]
	}
	return result
}
