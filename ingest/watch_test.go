package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherHandlesSpreadsheets(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var seen []string
	w := NewWatcher(dir, 20*time.Millisecond, func(_ context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, filepath.Base(path))
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	target := filepath.Join(dir, "pipeline.xlsx")
	ignored := filepath.Join(dir, "notes.txt")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(ignored, []byte("x"), 0600)
		_ = os.WriteFile(target, []byte("x"), 0600)
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, name := range seen {
		assert.Equal(t, "pipeline.xlsx", name)
	}
}

func TestDebouncerDropsStaleFires(t *testing.T) {
	d := newDebouncer(time.Hour)
	defer d.stop()
	ctx := context.Background()

	first := d.touch(ctx, "/x/pipeline.xlsx")
	second := d.touch(ctx, "/x/pipeline.xlsx")
	assert.NotEqual(t, first, second)

	assert.False(t, d.take(settled{path: "/x/pipeline.xlsx", seq: first}), "a timer that fired before the last write is ignored")
	assert.True(t, d.take(settled{path: "/x/pipeline.xlsx", seq: second}))
	assert.False(t, d.take(settled{path: "/x/pipeline.xlsx", seq: second}), "each settle is handled once")

	third := d.touch(ctx, "/x/pipeline.xlsx")
	assert.False(t, d.take(settled{path: "/x/pipeline.xlsx", seq: first}))
	assert.True(t, d.take(settled{path: "/x/pipeline.xlsx", seq: third}))
}

func TestWantFile(t *testing.T) {
	assert.True(t, wantFile("/x/pipeline.xlsx"))
	assert.False(t, wantFile("/x/~$pipeline.xlsx"))
	assert.False(t, wantFile("/x/.pipeline.xlsx"))
	assert.False(t, wantFile("/x/pipeline.csv"))
}

func TestWatcherMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"), 0, func(context.Context, string) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}
