package persistence

import "time"

// Well-known keys of the workspace store.
const (
	KeyUser  = "user"
	KeyTodos = "todos"
)

// Entry is a single key/value document held by the store.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}
