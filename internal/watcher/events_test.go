package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSWatcher_DetectsCreateAndDelete(t *testing.T) {
	dir := t.TempDir()
	w, err := NewOSWatcher(dir, nil, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	path := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	evt := waitForEvent(t, w.Events())
	assert.Equal(t, Change, evt.Kind)
	assert.Equal(t, path, evt.Path)

	require.NoError(t, os.Remove(path))
	evt = waitForEvent(t, w.Events())
	assert.Equal(t, Delete, evt.Kind)
	assert.Equal(t, path, evt.Path)
}

// A rename-away must not surface as a Delete: the content that path
// named may simply have moved and still exists on disk, so the old path
// is discarded rather than treated as a deletion (§9 Open Questions).
func TestOSWatcher_RenameAwayIsDiscardedNotDeleted(t *testing.T) {
	dir := t.TempDir()
	w, err := NewOSWatcher(dir, nil, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	oldPath := filepath.Join(dir, "old.md")
	require.NoError(t, os.WriteFile(oldPath, []byte("hello"), 0o644))
	evt := waitForEvent(t, w.Events())
	assert.Equal(t, Change, evt.Kind)

	newPath := filepath.Join(dir, "new.md")
	require.NoError(t, os.Rename(oldPath, newPath))

	select {
	case evt := <-w.Events():
		assert.NotEqual(t, oldPath, evt.Path, "the old, renamed-away path must never produce an event, let alone a Delete")
	case <-time.After(300 * time.Millisecond):
		// No event at all for the rename is also an acceptable outcome on
		// platforms where fsnotify reports it as a bare Rename with no
		// paired Create.
	}
}

func TestOSWatcher_IgnoresNonMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewOSWatcher(dir, nil, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case evt := <-w.Events():
		t.Fatalf("unexpected event for non-markdown file: %+v", evt)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestOSWatcher_WatchesNewlyCreatedSubdirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := NewOSWatcher(dir, nil, nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// Give the watcher's own goroutine time to add the new directory
	// before a file is created inside it.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "nested.md")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	evt := waitForEvent(t, w.Events())
	assert.Equal(t, Change, evt.Kind)
	assert.Equal(t, path, evt.Path)
}

func waitForEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}
