package persistence

import "context"

// KeyValueStore is the durable local storage shared by the session manager and the todo store.
// Values are opaque serialized documents; Get reports ErrNotFound for absent keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// EntryReader exposes entry metadata for diagnostics.
type EntryReader interface {
	GetEntry(ctx context.Context, key string) (Entry, error)
}
