package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWatch(t *testing.T) (string, *Watcher, <-chan Change, context.CancelFunc) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))

	w, err := New(path, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.Watch(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})
	return path, w, changes, cancel
}

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-changes:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return Change{}
	}
}

func TestWatcher_DetectsWrite(t *testing.T) {
	path, _, changes, _ := setupWatch(t)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0600))

	c := waitChange(t, changes)
	assert.Equal(t, path, c.Path)
	assert.False(t, c.Removed)
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	path, _, changes, _ := setupWatch(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0600))
	}

	waitChange(t, changes)
	select {
	case c := <-changes:
		t.Fatalf("unexpected second change %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_DetectsReplaceByRename(t *testing.T) {
	path, _, changes, _ := setupWatch(t)

	tmp := filepath.Join(filepath.Dir(path), "doc.pdf.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v2"), 0600))
	require.NoError(t, os.Rename(tmp, path))

	c := waitChange(t, changes)
	assert.False(t, c.Removed, "file exists after the replace")
}

func TestWatcher_DetectsRemove(t *testing.T) {
	path, _, changes, _ := setupWatch(t)

	require.NoError(t, os.Remove(path))

	c := waitChange(t, changes)
	assert.True(t, c.Removed)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path, _, changes, _ := setupWatch(t)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0600))

	select {
	case c := <-changes:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_CancelClosesChannel(t *testing.T) {
	_, _, changes, cancel := setupWatch(t)

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing", "doc.pdf"), 0)
	require.NoError(t, err)

	_, err = w.Watch(context.Background())
	assert.Error(t, err)
	assert.NoError(t, w.Close())
}

func TestWatcher_Classify(t *testing.T) {
	w, err := New("/tmp/folio/doc.pdf", 0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		event    fsnotify.Event
		relevant bool
		removed  bool
	}{
		{"write", fsnotify.Event{Name: "/tmp/folio/doc.pdf", Op: fsnotify.Write}, true, false},
		{"create", fsnotify.Event{Name: "/tmp/folio/doc.pdf", Op: fsnotify.Create}, true, false},
		{"remove", fsnotify.Event{Name: "/tmp/folio/doc.pdf", Op: fsnotify.Remove}, true, true},
		{"rename", fsnotify.Event{Name: "/tmp/folio/doc.pdf", Op: fsnotify.Rename}, true, true},
		{"chmod", fsnotify.Event{Name: "/tmp/folio/doc.pdf", Op: fsnotify.Chmod}, false, false},
		{"other file", fsnotify.Event{Name: "/tmp/folio/x.pdf", Op: fsnotify.Write}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, relevant := w.classify(tt.event)
			assert.Equal(t, tt.relevant, relevant)
			assert.Equal(t, tt.removed, c.Removed)
		})
	}
}
