package retrieval

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/DachengChen/paiAnalyst/applog"
)

// WatchEvent reports the outcome of one re-index.
type WatchEvent struct {
	Path    string
	Removed bool
	Chunks  int
	Err     error
}

// Watcher re-ingests documents as they are created, changed or removed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	ingester *Ingester

	// Notify, when set, receives every processed event.
	Notify func(WatchEvent)
}

// NewWatcher creates a watcher that feeds ing.
func NewWatcher(ing *Ingester) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, ingester: ing}, nil
}

// Run watches dir until ctx is done.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	applog.Info("watching %s for document changes", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !Supported(event.Name) {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create, event.Op&fsnotify.Write == fsnotify.Write:
				n, err := w.ingester.IngestFile(ctx, event.Name)
				if err != nil {
					applog.Error("re-index %s: %v", event.Name, err)
				}
				w.notify(WatchEvent{Path: event.Name, Chunks: n, Err: err})
			case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
				err := w.ingester.index.DeleteFile(ctx, filepath.Base(event.Name))
				if err != nil {
					applog.Error("drop %s: %v", event.Name, err)
				}
				w.notify(WatchEvent{Path: event.Name, Removed: true, Err: err})
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			applog.Error("watch %s: %v", dir, err)
		}
	}
}

func (w *Watcher) notify(e WatchEvent) {
	if w.Notify != nil {
		w.Notify(e)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
