package cooldown

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherObservesStoreWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cooldowns.state")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	watcher, err := NewWatcher(WatcherConfig{
		Path:             path,
		DebounceInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		watcher.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()
	defer watcher.Stop()

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)

	if err := store.SetCooldown("model-x", time.Hour); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected change notification after store write")
	}
}

func TestWatcherRequiresPath(t *testing.T) {
	if _, err := NewWatcher(WatcherConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}
