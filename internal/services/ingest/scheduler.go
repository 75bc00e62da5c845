package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/onboard/internal/common"
)

// Start registers the cron schedule and the directory watch configured under
// [ingest]. Both trigger TryReingest. Call Stop to release them.
func (s *Service) Start(ctx context.Context) error {
	if schedule := s.cfg.Ingest.Schedule; schedule != "" {
		c := cron.New(cron.WithSeconds())
		if _, err := c.AddFunc(schedule, s.runScheduled); err != nil {
			return fmt.Errorf("failed to add ingest schedule: %w", err)
		}
		c.Start()
		s.cron = c

		s.logger.Info().Str("schedule", schedule).Msg("Scheduled re-ingestion enabled")
	}

	if s.cfg.Ingest.Watch {
		watcher, ok := s.source.(Watcher)
		if !ok {
			s.logger.Warn().Msg("Document source cannot be watched, ingest.watch ignored")
			return nil
		}

		watchCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		s.watchCancel = cancel
		s.watchDone = done

		debounce := common.ParseDuration(s.cfg.Ingest.Debounce, 2*time.Second)
		common.SafeGo(s.logger, "ingest-watch", func() {
			defer close(done)
			if err := watcher.Watch(watchCtx, debounce, s.runScheduled); err != nil {
				s.logger.Error().Err(err).Msg("Document watch stopped")
			}
		})
	}

	return nil
}

// Stop halts the schedule and the watch, waiting for a running scheduled rebuild
func (s *Service) Stop() {
	if s.watchCancel != nil {
		s.watchCancel()
		<-s.watchDone
		s.watchCancel = nil
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
}

// runScheduled is the cron and watch callback
func (s *Service) runScheduled() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Recovered from panic in scheduled re-ingestion")
		}
	}()

	ran, err := s.TryReingest(context.Background())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled re-ingestion failed")
		return
	}
	if ran {
		s.logger.Debug().Msg("Scheduled re-ingestion completed")
	}
}
