package httpapi

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/issuescope/issuescope/internal/core/ports/driven"
	"github.com/issuescope/issuescope/internal/logger"
)

// SnapshotWatcher loads a JSON snapshot into the store and reloads it
// whenever the file changes on disk. This lets a serve-only deployment
// pick up data produced elsewhere without restarting.
type SnapshotWatcher struct {
	store   driven.IssueStore
	path    string
	watcher *fsnotify.Watcher
}

// NewSnapshotWatcher creates a watcher for the snapshot at path.
func NewSnapshotWatcher(store driven.IssueStore, path string) (*SnapshotWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors and atomic writers replace the file,
	// which drops a watch set on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &SnapshotWatcher{
		store:   store,
		path:    path,
		watcher: watcher,
	}, nil
}

// Run loads the snapshot once, then reloads on every change until the
// context is cancelled.
func (w *SnapshotWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.load(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("Snapshot changed (%s), reloading", event.Op)
			w.load(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Snapshot watcher error: %v", err)
		}
	}
}

// load imports the snapshot. Errors are logged, not fatal; the server
// keeps answering from the data it already has.
func (w *SnapshotWatcher) load(ctx context.Context) {
	f, err := os.Open(w.path)
	if err != nil {
		logger.Warn("Cannot open snapshot %s: %v", w.path, err)
		return
	}
	defer f.Close()

	count, err := w.store.ImportSnapshot(ctx, f)
	if err != nil {
		logger.Warn("Snapshot import failed after %d issues: %v", count, err)
		return
	}
	logger.Info("Loaded %d issues from snapshot", count)
}
