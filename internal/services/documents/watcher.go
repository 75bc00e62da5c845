package documents

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls onChange after document files under the directory change,
// coalescing bursts of events within debounce. New subdirectories are watched
// as they appear. It blocks until ctx is done.
func (s *DirectorySource) Watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := s.addTree(watcher, s.dir); err != nil {
		return err
	}

	s.logger.Info().
		Str("dir", s.dir).
		Dur("debounce", debounce).
		Msg("Watching document directory")

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && !isHidden(filepath.Base(event.Name)) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := s.addTree(watcher, event.Name); err != nil {
						s.logger.Warn().Err(err).Str("dir", event.Name).Msg("Failed to watch new directory")
					}
					continue
				}
			}
			if !s.relevantEvent(event) {
				continue
			}

			s.logger.Debug().
				Str("path", event.Name).
				Str("op", event.Op.String()).
				Msg("Document change detected")

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("Document watcher error")

		case <-fire:
			fire = nil
			onChange()
		}
	}
}

// relevantEvent reports whether event touches a supported, visible document file
func (s *DirectorySource) relevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	rel, err := filepath.Rel(s.dir, event.Name)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(part) {
			return false
		}
	}

	if strings.HasSuffix(strings.ToLower(event.Name), ".yaml") {
		// Sidecar metadata for a supported document
		return s.supported(strings.TrimSuffix(event.Name, filepath.Ext(event.Name)))
	}
	return s.supported(event.Name)
}

// addTree watches root and every visible directory below it
func (s *DirectorySource) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
