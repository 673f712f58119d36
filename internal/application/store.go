package application

import (
	"context"
	"time"

	"github.com/example/weather-todo/internal/persistence"
)

// readDocument loads key from store. Stores that track write times also report when the document was last
// written; the zero time means the store does not know.
func readDocument(ctx context.Context, store persistence.KeyValueStore, key string) ([]byte, time.Time, error) {
	if entries, ok := store.(persistence.EntryReader); ok {
		entry, err := entries.GetEntry(ctx, key)
		if err != nil {
			return nil, time.Time{}, err
		}
		return entry.Value, entry.UpdatedAt, nil
	}
	data, err := store.Get(ctx, key)
	return data, time.Time{}, err
}

func updatedAtAttrs(updatedAt time.Time) []any {
	if updatedAt.IsZero() {
		return nil
	}
	return []any{"updated_at", updatedAt.UTC().Format(time.RFC3339)}
}
