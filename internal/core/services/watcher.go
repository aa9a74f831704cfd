package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lectern-labs/lectern/internal/logger"
)

// debounceInterval coalesces the write-event bursts editors produce
// when saving a file.
const debounceInterval = 500 * time.Millisecond

// DocsWatcher re-ingests course documents when they change on disk, so
// a running server picks up edits without a restart.
type DocsWatcher struct {
	ingest *IngestService
	dir    string
}

// NewDocsWatcher creates a watcher over one documents folder.
func NewDocsWatcher(ingest *IngestService, dir string) *DocsWatcher {
	return &DocsWatcher{ingest: ingest, dir: dir}
}

// Run watches the folder until the context is cancelled. Each changed
// document is re-ingested after a short debounce; ingest failures are
// logged and watching continues.
func (w *DocsWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	logger.Info("Watching %s for document changes", w.dir)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !ingestableExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, at := range pending {
				if now.Sub(at) < debounceInterval {
					continue
				}
				delete(pending, path)

				course, chunks, err := w.ingest.IngestFile(ctx, path)
				if err != nil {
					logger.Warn("Re-ingest of %s failed: %v", filepath.Base(path), err)
					continue
				}
				logger.Info("Re-ingested %q: %d chunks", course.Title, chunks)
			}
		}
	}
}
