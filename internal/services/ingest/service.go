// Package ingest rebuilds the corpus index from the document source, persists
// the processed documents and publishes the new index. Rebuilds run on demand,
// on a cron schedule or when the document directory changes.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
	"github.com/ternarybob/onboard/internal/services/corpus"
)

// Origin names where the documents of a rebuild came from
const (
	OriginSource  = "source"
	OriginStorage = "storage"
)

// Watcher is implemented by sources that can report changes
type Watcher interface {
	Watch(ctx context.Context, debounce time.Duration, onChange func()) error
}

// Status describes the last rebuild
type Status struct {
	Running      bool          `json:"running"`
	LastRun      time.Time     `json:"last_run"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
	Origin       string        `json:"origin,omitempty"`
	Generation   uint64        `json:"generation"`
	Stats        corpus.Stats  `json:"stats"`
}

// Service owns index rebuilds. Only one rebuild runs at a time; a failed
// rebuild leaves the published index untouched.
type Service struct {
	cfg     *common.Config
	source  interfaces.DocumentSource
	builder *corpus.Builder
	holder  *corpus.Holder
	storage interfaces.DocumentStorage
	logger  arbor.ILogger

	runMu sync.Mutex // Serializes rebuilds

	mu     sync.RWMutex // Protects status
	status Status

	cron        *cron.Cron
	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

// NewService creates an ingest service. source or storage may be nil: without
// a source the index is rebuilt from storage, without storage nothing is persisted.
func NewService(cfg *common.Config, source interfaces.DocumentSource, builder *corpus.Builder, holder *corpus.Holder, storage interfaces.DocumentStorage, logger arbor.ILogger) *Service {
	return &Service{
		cfg:     cfg,
		source:  source,
		builder: builder,
		holder:  holder,
		storage: storage,
		logger:  logger,
	}
}

// Reingest loads every document, builds a fresh index, persists the document
// set and swaps the index in. It blocks while another rebuild is running.
func (s *Service) Reingest(ctx context.Context) (corpus.Stats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.rebuild(ctx)
}

// TryReingest is Reingest that skips instead of waiting when a rebuild is
// already in progress. It reports whether a rebuild ran.
func (s *Service) TryReingest(ctx context.Context) (bool, error) {
	if !s.runMu.TryLock() {
		s.logger.Debug().Msg("Rebuild already in progress, skipping")
		return false, nil
	}
	defer s.runMu.Unlock()
	_, err := s.rebuild(ctx)
	return true, err
}

// Status returns a snapshot of the last rebuild
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := s.status
	status.Generation = s.holder.Generation()
	return status
}

func (s *Service) rebuild(ctx context.Context) (corpus.Stats, error) {
	startTime := time.Now()
	s.setRunning(true)

	timeout := common.ParseDuration(s.cfg.Corpus.BuildTimeout, 5*time.Minute)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	docs, origin, err := s.loadDocuments(ctx)
	if err != nil {
		s.finish(startTime, origin, corpus.Stats{}, err)
		return corpus.Stats{}, err
	}

	idx, err := s.builder.Build(ctx, docs)
	if err != nil {
		err = fmt.Errorf("failed to build index from %s: %w", origin, err)
		s.finish(startTime, origin, corpus.Stats{}, err)
		return corpus.Stats{}, err
	}

	if origin == OriginSource && s.storage != nil {
		if err := s.storage.ReplaceAll(ToDocuments(idx)); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist processed documents")
		}
	}

	s.holder.Swap(idx)
	stats := idx.Stats()
	s.finish(startTime, origin, stats, nil)

	s.logger.Info().
		Str("origin", origin).
		Int("documents", stats.Documents).
		Int("chunks", stats.Chunks).
		Int("generation", int(s.holder.Generation())).
		Dur("duration", time.Since(startTime)).
		Msg("Corpus index published")

	return stats, nil
}

// loadDocuments reads the source and falls back to the stored document set
// when the source is missing or fails
func (s *Service) loadDocuments(ctx context.Context) ([]models.SourceDocument, string, error) {
	if s.source != nil {
		docs, err := s.source.Load(ctx)
		if err == nil {
			return docs, OriginSource, nil
		}
		if ctx.Err() != nil || s.storage == nil {
			return nil, OriginSource, fmt.Errorf("failed to load documents from %s: %w", s.source.Describe(), err)
		}
		s.logger.Warn().
			Err(err).
			Str("source", s.source.Describe()).
			Msg("Document source failed, rebuilding from stored documents")
	}

	if s.storage == nil {
		return nil, OriginStorage, errors.New("no document source or storage configured")
	}

	stored, err := s.storage.ListDocuments(nil)
	if err != nil {
		return nil, OriginStorage, fmt.Errorf("failed to load stored documents: %w", err)
	}
	return ToSourceDocuments(stored), OriginStorage, nil
}

func (s *Service) setRunning(running bool) {
	s.mu.Lock()
	s.status.Running = running
	s.mu.Unlock()
}

func (s *Service) finish(startTime time.Time, origin string, stats corpus.Stats, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Running = false
	s.status.LastRun = startTime
	s.status.LastDuration = time.Since(startTime)
	s.status.Origin = origin
	if err != nil {
		s.status.LastError = err.Error()
		s.logger.Error().Err(err).Str("origin", origin).Msg("Corpus rebuild failed, keeping previous index")
		return
	}
	s.status.LastError = ""
	s.status.Stats = stats
}
