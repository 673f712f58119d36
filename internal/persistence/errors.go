package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write collides with an existing unique key.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrLocked is returned when the backing database stayed locked past the retry budget.
	ErrLocked = errors.New("persistence: database locked")
	// ErrInvalidKey is returned for empty or whitespace-only keys.
	ErrInvalidKey = errors.New("persistence: invalid key")
)
