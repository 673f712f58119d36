package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/example/weather-todo/internal/persistence"
)

func TestRestoreReportsLastWrite(t *testing.T) {
	t.Parallel()

	written := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	store := &entryStoreStub{memoryStoreStub: newMemoryStoreStub(), updatedAt: written}
	store.data[persistence.KeyUser] = []byte(`{"username":"alice","lastLogin":"3/5/2024, 2:07:09 PM"}`)
	store.data[persistence.KeyTodos] = []byte(`[{"id":1,"title":"x","priority":"Low","completed":false,"createdAt":"3/5/2024, 2:07:09 PM"}]`)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	session := NewSessionManagerWithLogger(store, time.Now, logger)
	todos := NewTodoServiceWithLogger(store, nil, time.Now, logger)

	if err := NewApp(session, todos).Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !session.Authenticated() || len(todos.Todos()) != 1 {
		t.Fatalf("expected user and one todo restored, got auth=%v todos=%d", session.Authenticated(), len(todos.Todos()))
	}

	want := `"updated_at":"2024-03-05T14:07:09Z"`
	if got := strings.Count(logs.String(), want); got != 2 {
		t.Fatalf("expected %s on both restore lines, got %d in %s", want, got, logs.String())
	}
}

func TestReadDocument(t *testing.T) {
	t.Parallel()

	t.Run("plain stores report no write time", func(t *testing.T) {
		t.Parallel()

		store := newMemoryStoreStub()
		store.data["k"] = []byte("v")

		data, updatedAt, err := readDocument(context.Background(), store, "k")
		if err != nil || string(data) != "v" || !updatedAt.IsZero() {
			t.Fatalf("unexpected result %q %v %v", data, updatedAt, err)
		}
	})

	t.Run("absent keys report not found through entry stores", func(t *testing.T) {
		t.Parallel()

		store := &entryStoreStub{memoryStoreStub: newMemoryStoreStub(), updatedAt: time.Now()}
		if _, _, err := readDocument(context.Background(), store, "missing"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
