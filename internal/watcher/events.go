// Package watcher captures raw OS filesystem events beneath the content
// root and turns them into debounced batches for the sync orchestrator,
// grounded on the teacher's fsnotify wiring in
// internal/daemon/config_watcher.go, generalized to a recursive content
// tree and the two-set debounce state machine spec.md §4.7 describes.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/contentreader"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/metrics"
)

// EventKind distinguishes a content change from a content deletion.
type EventKind int

const (
	// Change covers both file creation and modification.
	Change EventKind = iota
	// Delete covers removal.
	Delete
)

// Event is one filtered, classified filesystem event.
type Event struct {
	Kind EventKind
	Path string
}

// channelCapacity is the bounded command channel capacity (§4.7, §5).
const channelCapacity = 100

// OSWatcher wraps fsnotify, applies the event filter, and exposes a
// bounded channel of classified events plus a process-wide overflow flag.
// It is owned exclusively by the caller that constructs it and is kept
// alive for the process lifetime; Close is only ever called on shutdown.
type OSWatcher struct {
	fsw           *fsnotify.Watcher
	events        chan Event
	needsFullSync atomic.Bool
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewOSWatcher creates an fsnotify watcher, recursively adds every
// directory beneath root, and starts the non-blocking event-filter
// goroutine that runs in the watcher callback's stead.
func NewOSWatcher(root string, m *metrics.Metrics, logger *slog.Logger) (*OSWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}

	w := &OSWatcher{
		fsw:     fsw,
		events:  make(chan Event, channelCapacity),
		metrics: m,
		logger:  logger,
	}

	if err := w.addTreeRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch content tree %s: %w", root, err)
	}

	go w.run()
	return w, nil
}

func (w *OSWatcher) addTreeRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Events returns the channel of filtered, classified events.
func (w *OSWatcher) Events() <-chan Event {
	return w.events
}

// NeedsFullSync atomically swaps the overflow flag to false and returns
// its prior value; it must be sampled only at the Collecting→Processing
// transition (§4.7).
func (w *OSWatcher) NeedsFullSync() bool {
	return w.needsFullSync.Swap(false)
}

// Close releases the underlying OS watcher. Intentionally not called on
// every batch — only on process shutdown (§9).
func (w *OSWatcher) Close() error {
	return w.fsw.Close()
}

// run is the OS-side callback loop: non-blocking, never touches the
// orchestrator, only classifies and forwards or sets the overflow flag.
func (w *OSWatcher) run() {
	for {
		select {
		case raw, ok := <-w.fsw.Events:
			if !ok {
				close(w.events)
				return
			}
			w.handleRaw(raw)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				continue
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *OSWatcher) handleRaw(raw fsnotify.Event) {
	if raw.Op&fsnotify.Create != 0 {
		if info, err := fsIsDir(raw.Name); err == nil && info {
			_ = w.fsw.Add(raw.Name)
			return
		}
	}

	if !contentreader.IsMarkdownPath(raw.Name) {
		return
	}

	// fsnotify.Rename fires on the old path of a move; the content that path
	// named may simply have moved elsewhere on disk and still exists, so it
	// is discarded rather than treated as a deletion (the new path arrives,
	// if at all, as its own separate Create event).
	var evt Event
	switch {
	case raw.Op&(fsnotify.Create|fsnotify.Write) != 0:
		evt = Event{Kind: Change, Path: raw.Name}
	case raw.Op&fsnotify.Remove != 0:
		evt = Event{Kind: Delete, Path: raw.Name}
	default:
		return
	}

	w.send(evt)
}

func (w *OSWatcher) send(evt Event) {
	select {
	case w.events <- evt:
	default:
		w.needsFullSync.Store(true)
		if w.metrics != nil {
			w.metrics.WatcherOverflows.Inc()
		}
		clsErr := apperrors.WatcherChannelFullError("watcher channel full, scheduling full sync").
			WithContext("path", evt.Path).Build()
		w.logger.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())), logfields.Path(evt.Path))
	}
}

func fsIsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
