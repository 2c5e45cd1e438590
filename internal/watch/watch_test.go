package watch

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesAndFlushes(t *testing.T) {
	dir := t.TempDir()

	flushed := make(chan Batch, 4)
	w, err := New(dir, Options{DebounceMs: 50, BulkThreshold: 100}, func(b Batch) {
		flushed <- b
	})
	require.NoError(t, err)
	defer w.Close()

	path := dir + "/a.txt"
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))

	select {
	case batch := <-flushed:
		assert.False(t, batch.Bulk)
		assert.NotEmpty(t, batch.Dirty)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced flush")
	}
}

func TestWatcher_BulkThreshold(t *testing.T) {
	w := &Watcher{
		opts:    Options{DebounceMs: 50, BulkThreshold: 2},
		dirty:   map[string]bool{"a": true, "b": true, "c": true},
		removed: map[string]bool{},
	}
	got := make(chan Batch, 1)
	w.onFlush = func(b Batch) { got <- b }
	w.flush()

	batch := <-got
	assert.True(t, batch.Bulk)
}
