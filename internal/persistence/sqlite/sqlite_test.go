package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/weather-todo/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "todo.db")
	storage, err := Open(dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = storage.Close()
	})

	require.NoError(t, storage.Migrate(context.Background()))
	return storage
}

func TestStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	fixed := time.Date(2024, time.May, 1, 9, 30, 0, 0, time.UTC)
	storage.now = func() time.Time { return fixed }

	_, err := storage.Get(ctx, persistence.KeyUser)
	require.ErrorIs(t, err, persistence.ErrNotFound)

	require.NoError(t, storage.Put(ctx, persistence.KeyUser, []byte(`{"username":"alice"}`)))

	value, err := storage.Get(ctx, persistence.KeyUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice"}`, string(value))

	entry, err := storage.GetEntry(ctx, " user ")
	require.NoError(t, err)
	assert.Equal(t, persistence.KeyUser, entry.Key)
	assert.True(t, entry.UpdatedAt.Equal(fixed))

	require.NoError(t, storage.Put(ctx, persistence.KeyUser, []byte(`{"username":"bob"}`)))
	value, err = storage.Get(ctx, persistence.KeyUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"bob"}`, string(value), "put must overwrite the previous document")

	require.NoError(t, storage.Delete(ctx, persistence.KeyUser))
	_, err = storage.Get(ctx, persistence.KeyUser)
	assert.ErrorIs(t, err, persistence.ErrNotFound)

	assert.NoError(t, storage.Delete(ctx, persistence.KeyUser), "deleting an absent key is a no-op")
}

func TestStorage_Keys(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	keys, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, storage.Put(ctx, persistence.KeyUser, []byte(`{}`)))
	require.NoError(t, storage.Put(ctx, persistence.KeyTodos, []byte(`[]`)))

	keys, err = storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{persistence.KeyTodos, persistence.KeyUser}, keys)
}

func TestStorage_RejectsEmptyKeys(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	_, err := storage.Get(ctx, "  ")
	assert.ErrorIs(t, err, persistence.ErrInvalidKey)
	assert.ErrorIs(t, storage.Put(ctx, "", []byte("x")), persistence.ErrInvalidKey)
	assert.ErrorIs(t, storage.Delete(ctx, ""), persistence.ErrInvalidKey)
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "todo.db")

	first, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, first.Migrate(ctx))
	require.NoError(t, first.Put(ctx, persistence.KeyTodos, []byte(`[{"id":1}]`)))
	require.NoError(t, first.Close())

	second, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	require.NoError(t, second.Migrate(ctx), "migrations must be idempotent")

	value, err := second.Get(ctx, persistence.KeyTodos)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(value))

	version, err := second.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestStorage_InMemory(t *testing.T) {
	ctx := context.Background()
	storage, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	require.NoError(t, storage.Migrate(ctx))

	require.NoError(t, storage.Put(ctx, "k", []byte("v")))
	value, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate  func(*Config)
		wantErr bool
	}{
		"defaults":          {mutate: func(*Config) {}},
		"empty dsn":         {mutate: func(c *Config) { c.DSN = " " }, wantErr: true},
		"bad journal mode":  {mutate: func(c *Config) { c.JournalMode = "FAST" }, wantErr: true},
		"bad synchronous":   {mutate: func(c *Config) { c.Synchronous = "SOMETIMES" }, wantErr: true},
		"negative timeout":  {mutate: func(c *Config) { c.BusyTimeout = -time.Second }, wantErr: true},
		"negative pool cap": {mutate: func(c *Config) { c.MaxOpenConns = -1 }, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig("todo.db")
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestErrorMapper_MapError(t *testing.T) {
	t.Parallel()

	mapper := NewErrorMapper()

	assert.NoError(t, mapper.MapError(nil))
	assert.ErrorIs(t, mapper.MapError(fmt.Errorf("wrapped: %w", sql.ErrNoRows)), persistence.ErrNotFound)
	assert.ErrorIs(t, mapper.MapError(errors.New("UNIQUE constraint failed: kv_entries.key")), persistence.ErrDuplicate)
	assert.ErrorIs(t, mapper.MapError(errors.New("database is locked (5) (SQLITE_BUSY)")), persistence.ErrLocked)

	other := errors.New("disk I/O error")
	assert.Same(t, other, mapper.MapError(other))
}

func TestStorage_WithRetryStopsOnNonLockErrors(t *testing.T) {
	storage := newTestStorage(t)
	storage.config.RetryDelay = time.Millisecond

	calls := 0
	boom := errors.New("boom")
	err := storage.withRetry(context.Background(), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	calls = 0
	err = storage.withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
