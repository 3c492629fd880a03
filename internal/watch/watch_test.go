package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/config"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(_ context.Context, paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recorder) seen() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

func TestNewRequiresCallback(t *testing.T) {
	_, err := New(Options{})
	require.ErrorIs(t, err, ErrNoCallback)
}

func TestFlushBatchesSortedPaths(t *testing.T) {
	rec := &recorder{}
	w, err := New(Options{OnChange: rec.record, Debounce: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })
	w.baseCtx = context.Background()

	w.schedule("b.php")
	w.schedule("a.php")
	w.schedule("b.php")
	w.flush()

	require.Len(t, rec.seen(), 1)
	assert.Equal(t, []string{"a.php", "b.php"}, rec.seen()[0])

	w.flush()
	assert.Len(t, rec.seen(), 1, "empty batch is not delivered")
}

func TestNewBatchCancelsPreviousPass(t *testing.T) {
	started := make(chan context.Context, 1)
	release := make(chan struct{})
	calls := 0
	w, err := New(Options{Debounce: time.Hour, OnChange: func(ctx context.Context, _ []string) {
		calls++
		if calls == 1 {
			started <- ctx
			<-release
		}
	}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.fsw.Close() })
	w.baseCtx = context.Background()

	w.schedule("a.php")
	go w.flush()
	first := <-started

	w.schedule("a.php")
	done := make(chan struct{})
	go func() {
		w.flush()
		close(done)
	}()
	require.Eventually(t, func() bool { return first.Err() != nil }, time.Second, 5*time.Millisecond)
	close(release)
	<-done
	assert.Equal(t, 2, calls)
}

func TestRunReportsPHPChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vendor"), 0o755))
	cfg, err := config.Parse(`exclude = ["vendor/**", "vendor"]`, dir)
	require.NoError(t, err)

	rec := &recorder{}
	w, err := New(Options{Config: cfg, OnChange: rec.record, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx, dir) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})

	// give the watcher time to register the directories
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "lib.php"), []byte("<?php"), 0o644))
	target := filepath.Join(dir, "a.php")
	require.NoError(t, os.WriteFile(target, []byte("<?php foo();;"), 0o644))

	require.Eventually(t, func() bool { return len(rec.seen()) > 0 }, 5*time.Second, 10*time.Millisecond)
	for _, batch := range rec.seen() {
		for _, p := range batch {
			assert.Equal(t, target, p)
		}
	}
}
