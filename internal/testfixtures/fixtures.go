package testfixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/weather-todo/internal/application"
	"github.com/example/weather-todo/internal/persistence"
)

var todoCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic logged in user.
type UserFixture struct {
	Username  string
	LastLogin time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	fixture := UserFixture{Username: "alice", LastLogin: referenceTime}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUsername overrides the username.
func WithUsername(name string) UserOption {
	return func(f *UserFixture) {
		f.Username = name
	}
}

// WithLastLogin overrides the login instant.
func WithLastLogin(t time.Time) UserOption {
	return func(f *UserFixture) {
		f.LastLogin = t
	}
}

// Record returns the fixture as the persisted user record.
func (f UserFixture) Record() application.UserRecord {
	return application.UserRecord{
		Username:  f.Username,
		LastLogin: f.LastLogin.Format(application.TimestampLayout),
	}
}

// ----------------------------- Todo fixtures -----------------------------

// TodoFixture represents a deterministic todo item.
type TodoFixture struct {
	ID          int64
	Title       string
	Description string
	Priority    application.Priority
	Completed   bool
	CreatedAt   time.Time
	Weather     *application.WeatherInfo
}

// TodoOption configures the generated todo fixture.
type TodoOption func(*TodoFixture)

// NewTodoFixture returns a todo fixture whose id and creation time are derived from a package counter.
func NewTodoFixture(opts ...TodoOption) TodoFixture {
	idx := atomic.AddUint64(&todoCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := TodoFixture{
		ID:        created.UnixMilli(),
		Title:     fmt.Sprintf("Todo %03d", idx),
		Priority:  application.PriorityMedium,
		CreatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTodoID overrides the generated id.
func WithTodoID(id int64) TodoOption {
	return func(f *TodoFixture) {
		f.ID = id
	}
}

// WithTodoTitle overrides the generated title.
func WithTodoTitle(title string) TodoOption {
	return func(f *TodoFixture) {
		f.Title = title
	}
}

// WithTodoDescription sets the description.
func WithTodoDescription(description string) TodoOption {
	return func(f *TodoFixture) {
		f.Description = description
	}
}

// WithTodoPriority sets the priority.
func WithTodoPriority(priority application.Priority) TodoOption {
	return func(f *TodoFixture) {
		f.Priority = priority
	}
}

// WithTodoCompleted marks the todo as done.
func WithTodoCompleted() TodoOption {
	return func(f *TodoFixture) {
		f.Completed = true
	}
}

// WithTodoWeather attaches a weather snapshot.
func WithTodoWeather(temperature float64, description string) TodoOption {
	return func(f *TodoFixture) {
		f.Weather = &application.WeatherInfo{Temperature: temperature, Description: description}
	}
}

// Item returns the fixture as an application.TodoItem value.
func (f TodoFixture) Item() application.TodoItem {
	item := application.TodoItem{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Completed:   f.Completed,
		CreatedAt:   f.CreatedAt.Format(application.TimestampLayout),
	}
	if f.Weather != nil {
		info := *f.Weather
		item.WeatherInfo = &info
	}
	return item
}

// ----------------------------- Seeding -----------------------------

// SeedUser writes the user record the way a successful login does.
func SeedUser(tb testing.TB, store persistence.KeyValueStore, user UserFixture) {
	tb.Helper()
	seedJSON(tb, store, persistence.KeyUser, user.Record())
}

// SeedTodos writes the todo list document.
func SeedTodos(tb testing.TB, store persistence.KeyValueStore, todos ...TodoFixture) {
	tb.Helper()
	items := make([]application.TodoItem, 0, len(todos))
	for _, todo := range todos {
		items = append(items, todo.Item())
	}
	seedJSON(tb, store, persistence.KeyTodos, items)
}

// SeedRaw writes an arbitrary document, for malformed-data cases.
func SeedRaw(tb testing.TB, store persistence.KeyValueStore, key string, raw string) {
	tb.Helper()
	if err := store.Put(context.Background(), key, []byte(raw)); err != nil {
		tb.Fatalf("failed to seed %s: %v", key, err)
	}
}

func seedJSON(tb testing.TB, store persistence.KeyValueStore, key string, value any) {
	tb.Helper()
	data, err := json.Marshal(value)
	if err != nil {
		tb.Fatalf("failed to encode %s: %v", key, err)
	}
	if err := store.Put(context.Background(), key, data); err != nil {
		tb.Fatalf("failed to seed %s: %v", key, err)
	}
}
