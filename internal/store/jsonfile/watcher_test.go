package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewFileWatcher(zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path := filepath.Join(dir, "tasks.json")
	events, err := watcher.Watch(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	select {
	case event := <-events:
		assert.Equal(t, path, event.Path)
		assert.False(t, event.Timestamp.IsZero())
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestFileWatcher_AtomicRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewFileWatcher(zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path := filepath.Join(dir, "tasks.json")
	events, err := watcher.Watch(ctx, path)
	require.NoError(t, err)

	require.NoError(t, writeAtomic(path, []byte(`{"2024-05-01":[]}`)))

	select {
	case event := <-events:
		assert.Equal(t, path, event.Path)
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewFileWatcher(zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := watcher.Watch(ctx, filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "team.json"), []byte(`{}`), 0o644))

	select {
	case event := <-events:
		t.Fatalf("unexpected event for %s", event.Path)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcher_Debounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watcher, err := NewFileWatcher(zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	path := filepath.Join(dir, "tasks.json")
	events, err := watcher.Watch(ctx, path)
	require.NoError(t, err)

	// Rapidly write to the same file multiple times
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
		time.Sleep(10 * time.Millisecond) // Less than debounce delay
	}

	timeout := time.After(300 * time.Millisecond)
	eventCount := 0
	for {
		select {
		case <-events:
			eventCount++
		case <-timeout:
			assert.Equal(t, 1, eventCount, "should receive exactly one debounced event")
			return
		}
	}
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher(zerolog.Nop())
	require.NoError(t, err)
	defer watcher.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	events, err := watcher.Watch(ctx, filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	cancel()

	time.Sleep(100 * time.Millisecond) // Give time for cleanup goroutine
	_, ok := <-events
	assert.False(t, ok, "channel should be closed after context cancellation")
}

func TestFileWatcher_Close(t *testing.T) {
	t.Parallel()

	watcher, err := NewFileWatcher(zerolog.Nop())
	require.NoError(t, err)

	events, err := watcher.Watch(context.Background(), filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	require.NoError(t, watcher.Close())

	_, ok := <-events
	assert.False(t, ok, "channel should be closed after watcher close")
}
