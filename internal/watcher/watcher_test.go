package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/folio/internal/watcher"
)

const debounce = 40 * time.Millisecond

// startWatcher creates dir/library.db and watches it.
func startWatcher(t *testing.T) (dir string, changes <-chan struct{}, w *watcher.Watcher) {
	t.Helper()
	dir = t.TempDir()
	dbPath := filepath.Join(dir, "library.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("db"), 0o600))

	w, err := watcher.New(watcher.Config{DBPath: dbPath, DebounceDur: debounce})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	changes, err = w.Start()
	require.NoError(t, err)
	return dir, changes, w
}

func requireSignal(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
	case <-time.After(20 * debounce):
		t.Fatal("expected a change signal")
	}
}

func requireQuiet(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
		t.Fatal("unexpected change signal")
	case <-time.After(4 * debounce):
	}
}

func TestWatcher_DatabaseWriteSignals(t *testing.T) {
	dir, changes, _ := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.db"), []byte("db2"), 0o600))
	requireSignal(t, changes)
}

func TestWatcher_WALCreateSignals(t *testing.T) {
	dir, changes, _ := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.db-wal"), []byte("wal"), 0o600))
	requireSignal(t, changes)
}

func TestWatcher_BurstCoalesces(t *testing.T) {
	dir, changes, _ := startWatcher(t)
	wal := filepath.Join(dir, "library.db-wal")

	for i := range 5 {
		require.NoError(t, os.WriteFile(wal, []byte{byte(i)}, 0o600))
		time.Sleep(debounce / 4)
	}
	requireSignal(t, changes)
	requireQuiet(t, changes)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir, changes, _ := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.db.bak"), []byte("bak"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	requireQuiet(t, changes)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	_, _, w := startWatcher(t)

	done := make(chan struct{})
	go func() {
		require.NoError(t, w.Stop())
		require.NoError(t, w.Stop())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop timed out")
	}
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "library.db")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.ErrorContains(t, err, "watching directory")
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/data/library.db")
	require.Equal(t, "/data/library.db", cfg.DBPath)
	require.Equal(t, watcher.DefaultDebounce, cfg.DebounceDur)
}
