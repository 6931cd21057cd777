package watcher

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/metrics"
)

// DefaultDebounce is the reference debounce window (§4.7, §5).
const DefaultDebounce = 1500 * time.Millisecond

// SyncEngine is the subset of the orchestrator the worker drives. It is an
// interface so tests can substitute a recording fake.
type SyncEngine interface {
	FullSync(ctx context.Context) (bool, error)
	ProcessBatch(ctx context.Context, changes, deletions []string) (bool, error)
	NotifyBuild(ctx context.Context)
}

// overflowSource reports and clears the watcher's full-sync-needed flag.
// Sampled only at the Collecting→Processing transition.
type overflowSource interface {
	NeedsFullSync() bool
}

// Worker implements the debounce state machine: Idle → Collecting →
// Processing → Idle. It maintains two disjoint path sets and never calls
// the orchestrator concurrently with event intake.
type Worker struct {
	events   <-chan Event
	overflow overflowSource
	engine   SyncEngine
	debounce time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewWorker constructs a Worker. debounce <= 0 defaults to DefaultDebounce.
func NewWorker(events <-chan Event, overflow overflowSource, engine SyncEngine, debounce time.Duration, m *metrics.Metrics, logger *slog.Logger) *Worker {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		events:   events,
		overflow: overflow,
		engine:   engine,
		debounce: debounce,
		metrics:  m,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled or the event channel closes. Each
// cycle: block for the first event (Idle), collect more until a
// debounce-window silence (Collecting), then call the orchestrator exactly
// once (Processing) and fire the notifier if anything changed.
func (w *Worker) Run(ctx context.Context) error {
	pendingChanges := make(map[string]struct{})
	pendingDeletions := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			applyEvent(pendingChanges, pendingDeletions, evt)
		}

		collectStart := timeNow()
		if !w.collect(ctx, pendingChanges, pendingDeletions) {
			return nil
		}
		if w.metrics != nil {
			w.metrics.DebounceWindowSec.Observe(timeNow().Sub(collectStart).Seconds())
		}

		syncOccurred := w.process(ctx, pendingChanges, pendingDeletions)
		pendingChanges = make(map[string]struct{})
		pendingDeletions = make(map[string]struct{})

		if syncOccurred {
			w.engine.NotifyBuild(ctx)
		}
	}
}

// collect repeatedly receives with a debounce timeout; each arrival resets
// the window. A timeout or closed channel ends the collection phase.
// Returns false only when ctx is done; a closed channel returns true so
// that the events already collected are still processed.
func (w *Worker) collect(ctx context.Context, changes, deletions map[string]struct{}) bool {
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case evt, ok := <-w.events:
			if !ok {
				return true
			}
			applyEvent(changes, deletions, evt)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			return true
		}
	}
}

// process samples the overflow flag exactly once, at the Collecting→
// Processing transition, then calls either FullSync or ProcessBatch.
func (w *Worker) process(ctx context.Context, changes, deletions map[string]struct{}) bool {
	if w.overflow.NeedsFullSync() {
		w.logger.Info("watcher channel overflowed, running full sync")
		changed, err := w.engine.FullSync(ctx)
		if err != nil {
			w.logger.Error("full sync failed", logfields.Error(err))
			return false
		}
		return changed
	}

	if len(changes) == 0 && len(deletions) == 0 {
		return false
	}

	changePaths := keys(changes)
	deletionPaths := keys(deletions)
	changed, err := w.engine.ProcessBatch(ctx, changePaths, deletionPaths)
	if err != nil {
		w.logger.Error("batch processing failed", logfields.Error(err),
			logfields.ChangeCount(len(changePaths)), logfields.DeleteCount(len(deletionPaths)))
		return false
	}
	return changed
}

func applyEvent(changes, deletions map[string]struct{}, evt Event) {
	switch evt.Kind {
	case Change:
		delete(deletions, evt.Path)
		changes[evt.Path] = struct{}{}
	case Delete:
		delete(changes, evt.Path)
		deletions[evt.Path] = struct{}{}
	}
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

var timeNow = time.Now
