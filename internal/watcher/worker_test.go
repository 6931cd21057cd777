package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu            sync.Mutex
	fullSyncCalls int
	batches       [][2][]string // [changes, deletions]
	notifyCalls   int
	fullSyncErr   error
	batchErr      error
}

func (f *fakeEngine) FullSync(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullSyncCalls++
	return f.fullSyncErr == nil, f.fullSyncErr
}

func (f *fakeEngine) ProcessBatch(_ context.Context, changes, deletions []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, [2][]string{changes, deletions})
	return f.batchErr == nil, f.batchErr
}

func (f *fakeEngine) NotifyBuild(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifyCalls++
}

func (f *fakeEngine) snapshot() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullSyncCalls, len(f.batches), f.notifyCalls
}

type fakeOverflow struct {
	mu    sync.Mutex
	value bool
}

func (f *fakeOverflow) set(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = v
}

func (f *fakeOverflow) NeedsFullSync() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.value
	f.value = false
	return v
}

const testDebounce = 20 * time.Millisecond

// Scenario 6: a debounced burst of changes collapses into a single batch
// call and a single notify call.
func TestWorker_DebouncedBurstIsSingleBatch(t *testing.T) {
	events := make(chan Event, 10)
	engine := &fakeEngine{}
	overflow := &fakeOverflow{}
	w := NewWorker(events, overflow, engine, testDebounce, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	events <- Event{Kind: Change, Path: "/content/a.md"}
	events <- Event{Kind: Change, Path: "/content/b.md"}
	events <- Event{Kind: Change, Path: "/content/a.md"}

	require.Eventually(t, func() bool {
		_, batches, notifies := engine.snapshot()
		return batches == 1 && notifies == 1
	}, time.Second, 5*time.Millisecond)

	fullSyncs, batches, _ := engine.snapshot()
	assert.Equal(t, 0, fullSyncs)
	assert.Equal(t, 1, batches)
	assert.ElementsMatch(t, []string{"/content/a.md", "/content/b.md"}, engine.batches[0][0])
	assert.Empty(t, engine.batches[0][1])
}

// Scenario 7: flicker (add then delete within the same window) collapses
// to a single deletion, not a change.
func TestWorker_FlickerCollapsesToDeletion(t *testing.T) {
	events := make(chan Event, 10)
	engine := &fakeEngine{}
	overflow := &fakeOverflow{}
	w := NewWorker(events, overflow, engine, testDebounce, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	events <- Event{Kind: Change, Path: "/content/flicker.md"}
	events <- Event{Kind: Delete, Path: "/content/flicker.md"}

	require.Eventually(t, func() bool {
		_, batches, _ := engine.snapshot()
		return batches == 1
	}, time.Second, 5*time.Millisecond)

	assert.Empty(t, engine.batches[0][0])
	assert.Equal(t, []string{"/content/flicker.md"}, engine.batches[0][1])
}

// Scenario 8: an overflow signal sampled at the Collecting→Processing
// transition triggers a full sync instead of a batch, exactly once.
func TestWorker_OverflowTriggersFullSync(t *testing.T) {
	events := make(chan Event, 10)
	engine := &fakeEngine{}
	overflow := &fakeOverflow{}
	overflow.set(true)
	w := NewWorker(events, overflow, engine, testDebounce, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	events <- Event{Kind: Change, Path: "/content/a.md"}

	require.Eventually(t, func() bool {
		fullSyncs, _, _ := engine.snapshot()
		return fullSyncs == 1
	}, time.Second, 5*time.Millisecond)

	fullSyncs, batches, notifies := engine.snapshot()
	assert.Equal(t, 1, fullSyncs)
	assert.Equal(t, 0, batches)
	assert.Equal(t, 1, notifies)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	events := make(chan Event)
	w := NewWorker(events, &fakeOverflow{}, &fakeEngine{}, testDebounce, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
