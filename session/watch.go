package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/speccanvas/speccanvas/export"
)

// WatcherConfig configures the snapshot file watcher.
type WatcherConfig struct {
	// Path is the JSON snapshot file to watch.
	Path string

	// DebounceDelay is how long to wait for more writes before reloading.
	DebounceDelay time.Duration

	// Logger for logging events.
	Logger *slog.Logger
}

// Watcher reloads the session whenever a snapshot file on disk changes.
// Editors typically write via rename, so the parent directory is watched and
// events are filtered to the target file. Writes are debounced so a rapid
// save burst loads the file once.
type Watcher struct {
	config  WatcherConfig
	session *Session
	trigger *Trigger
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher that feeds the session and trigger.
func NewWatcher(config WatcherConfig, s *Session, t *Trigger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 250 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		session: s,
		trigger: t,
		watcher: fsw,
		logger:  logger,
	}, nil
}

// Start begins watching and blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.logger.Info("watching snapshot file",
		"path", w.config.Path,
		"debounce", w.config.DebounceDelay)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	dirty := w.pending
	w.pending = false
	w.pendingMu.Unlock()

	if !dirty {
		return
	}

	data, err := os.ReadFile(w.config.Path)
	if err != nil {
		w.logger.Warn("reading snapshot file", "path", w.config.Path, "error", err)
		return
	}

	g, _, err := export.ImportJSON(data)
	if err != nil {
		// Mid-write reads can see partial JSON. The next event retries.
		w.logger.Warn("invalid snapshot, keeping current graph",
			"path", w.config.Path,
			"error", err)
		return
	}

	w.session.Replace(g)
	w.logger.Info("snapshot reloaded",
		"path", w.config.Path,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges))

	if w.trigger != nil {
		w.trigger.NotifyChange()
	}
}
