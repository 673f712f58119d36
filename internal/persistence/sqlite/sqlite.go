package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/example/weather-todo/internal/persistence"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage is a SQLite backed persistence.KeyValueStore.
type Storage struct {
	db     *sql.DB
	config Config
	mapper *ErrorMapper
	now    func() time.Time
}

var (
	_ persistence.KeyValueStore = (*Storage)(nil)
	_ persistence.EntryReader   = (*Storage)(nil)
)

// Open opens the database at dsn using DefaultConfig, or InMemoryConfig for ":memory:".
func Open(dsn string) (*Storage, error) {
	cfg := DefaultConfig(dsn)
	if cfg.isMemory() {
		cfg = InMemoryConfig()
		cfg.DSN = dsn
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig opens a storage with explicit connection settings.
func OpenWithConfig(cfg Config) (*Storage, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{
		db:     db,
		config: cfg,
		mapper: NewErrorMapper(),
		now:    time.Now,
	}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the latest applied migration version.
func (s *Storage) SchemaVersion(ctx context.Context) (int64, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// Get returns the stored document for key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// GetEntry returns the stored document together with its update timestamp.
func (s *Storage) GetEntry(ctx context.Context, key string) (persistence.Entry, error) {
	normalized, err := normalizeKey(key)
	if err != nil {
		return persistence.Entry{}, err
	}

	var (
		value     string
		updatedAt string
	)
	err = s.withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT value, updated_at FROM kv_entries WHERE key = ?`,
			normalized,
		).Scan(&value, &updatedAt)
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Entry{}, persistence.ErrNotFound
		}
		return persistence.Entry{}, fmt.Errorf("sqlite: get %s: %w", normalized, err)
	}

	parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return persistence.Entry{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return persistence.Entry{
		Key:       normalized,
		Value:     []byte(value),
		UpdatedAt: parsed,
	}, nil
}

// Put stores value under key, replacing any previous document.
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	normalized, err := normalizeKey(key)
	if err != nil {
		return err
	}

	updatedAt := s.now().UTC().Format(time.RFC3339Nano)
	err = s.withRetry(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, `
			INSERT INTO kv_entries (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, normalized, string(value), updatedAt)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("sqlite: put %s: %w", normalized, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	normalized, err := normalizeKey(key)
	if err != nil {
		return err
	}

	err = s.withRetry(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, normalized)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", normalized, err)
	}
	return nil
}

// Keys lists stored keys in lexical order.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.withRetry(ctx, func() error {
		keys = keys[:0]
		rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv_entries ORDER BY key`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				return err
			}
			keys = append(keys, key)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	return keys, nil
}

func normalizeKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", persistence.ErrInvalidKey
	}
	return trimmed, nil
}
