package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/weather-todo/internal/persistence"
	"github.com/example/weather-todo/internal/persistence/sqlite"
)

// SQLiteHarness provides a migrated key-value store in a temporary SQLite file for integration-style tests.
type SQLiteHarness struct {
	Store   persistence.KeyValueStore
	Storage *sqlite.Storage
	Path    string

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// Reopen closes the current connection and opens the same file again, simulating a restart.
func (h *SQLiteHarness) Reopen(tb testing.TB) {
	tb.Helper()
	h.Close()
	storage := openMigrated(tb, h.Path)
	h.Store = storage
	h.Storage = storage
	h.cleanup = func() { _ = storage.Close() }
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "todo.db")
	storage := openMigrated(tb, path)

	harness := &SQLiteHarness{
		Store:   storage,
		Storage: storage,
		Path:    path,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

func openMigrated(tb testing.TB, path string) *sqlite.Storage {
	tb.Helper()

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}
