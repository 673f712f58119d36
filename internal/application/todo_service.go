package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/weather-todo/internal/persistence"
)

// WeatherProvider looks up the current weather for a city.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (WeatherReport, error)
}

// TodoService owns the todo list, the todo form draft, the view filter and the latest weather snapshot.
// The list is written to storage after every mutation.
type TodoService struct {
	store   persistence.KeyValueStore
	weather WeatherProvider
	ids     *MonotonicIDs
	now     func() time.Time
	logger  *slog.Logger

	mu           sync.RWMutex
	todos        []TodoItem
	draft        TodoInput
	filter       FilterMode
	snapshot     *WeatherSnapshot
	weatherError string
	weatherSeq   uint64
}

// NewTodoService wires dependencies for the todo service.
func NewTodoService(store persistence.KeyValueStore, weather WeatherProvider, now func() time.Time) *TodoService {
	return NewTodoServiceWithLogger(store, weather, now, nil)
}

// NewTodoServiceWithLogger wires dependencies for the todo service with a specified logger.
func NewTodoServiceWithLogger(store persistence.KeyValueStore, weather WeatherProvider, now func() time.Time, logger *slog.Logger) *TodoService {
	if now == nil {
		now = time.Now
	}
	return &TodoService{
		store:   store,
		weather: weather,
		ids:     NewMonotonicIDs(),
		now:     now,
		logger:  defaultLogger(logger),
		todos:   []TodoItem{},
		draft:   DefaultTodoInput(),
		filter:  FilterAll,
	}
}

func (s *TodoService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TodoService", operation, attrs...)
}

// Restore loads the persisted list. Absent, malformed or schema-invalid documents yield an empty list.
func (s *TodoService) Restore(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("TodoService is nil")
	}

	logger := s.loggerWith(ctx, "Restore")

	items := []TodoItem{}
	var updatedAt time.Time
	if s.store != nil {
		data, writtenAt, err := readDocument(ctx, s.store, persistence.KeyTodos)
		updatedAt = writtenAt
		switch {
		case errors.Is(err, persistence.ErrNotFound):
		case err != nil:
			logger.ErrorContext(ctx, "failed to read persisted todos", "error", err)
			return err
		default:
			decoded, dErr := decodeTodoList(data)
			if dErr != nil {
				logger.WarnContext(ctx, "discarding malformed persisted todos", "error", dErr)
			} else if decoded != nil {
				items = decoded
			}
		}
	}

	s.mu.Lock()
	s.todos = items
	for _, item := range items {
		s.ids.Observe(item.ID)
	}
	s.mu.Unlock()

	logger.InfoContext(ctx, "todos restored", append([]any{"count", len(items)}, updatedAtAttrs(updatedAt)...)...)
	return nil
}

// Persist writes the full list to storage.
func (s *TodoService) Persist(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("TodoService is nil")
	}
	s.mu.RLock()
	snapshot := cloneTodos(s.todos)
	s.mu.RUnlock()
	return s.persist(ctx, snapshot)
}

func (s *TodoService) persist(ctx context.Context, items []TodoItem) error {
	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}
	if err := s.store.Put(ctx, persistence.KeyTodos, data); err != nil {
		return fmt.Errorf("persist todos: %w", err)
	}
	return nil
}

// AddTodo appends a new item built from input. A blank title is rejected with a ValidationError and
// leaves the list unchanged. On success the form draft is reset to its defaults.
func (s *TodoService) AddTodo(ctx context.Context, input TodoInput) (item TodoItem, err error) {
	if s == nil {
		return TodoItem{}, fmt.Errorf("TodoService is nil")
	}

	logger := s.loggerWith(ctx, "AddTodo")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "todo not added", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("todo_id", item.ID).InfoContext(ctx, "todo added")
	}()

	normalized := normalizeTodoInput(input)
	if vErr := validateTodoInput(normalized); vErr.HasErrors() {
		s.mu.Lock()
		s.draft = normalized
		s.mu.Unlock()
		return TodoItem{}, vErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now()
	item = TodoItem{
		ID:          s.ids.NextAt(createdAt),
		Title:       normalized.Title,
		Description: normalized.Description,
		Priority:    normalized.Priority,
		Completed:   false,
		CreatedAt:   createdAt.Format(TimestampLayout),
	}
	if s.snapshot != nil {
		item.WeatherInfo = &WeatherInfo{
			Temperature: s.snapshot.Temperature,
			Description: s.snapshot.Description,
		}
	}

	next := append(cloneTodos(s.todos), item)
	if err = s.persist(ctx, next); err != nil {
		return TodoItem{}, err
	}

	s.todos = next
	s.draft = DefaultTodoInput()
	return item.clone(), nil
}

// DeleteTodo removes the item with id. Unknown ids are ignored.
func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	if s == nil {
		return fmt.Errorf("TodoService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.loggerWith(ctx, "DeleteTodo", "todo_id", id).DebugContext(ctx, "todo not found, nothing deleted")
		return nil
	}

	next := make([]TodoItem, 0, len(s.todos)-1)
	next = append(next, s.todos[:idx]...)
	next = append(next, s.todos[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.todos = next
	s.loggerWith(ctx, "DeleteTodo", "todo_id", id).InfoContext(ctx, "todo deleted")
	return nil
}

// ToggleComplete flips the completed flag of the item with id. Unknown ids are ignored.
func (s *TodoService) ToggleComplete(ctx context.Context, id int64) error {
	if s == nil {
		return fmt.Errorf("TodoService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.loggerWith(ctx, "ToggleComplete", "todo_id", id).DebugContext(ctx, "todo not found, nothing toggled")
		return nil
	}

	next := cloneTodos(s.todos)
	next[idx].Completed = !next[idx].Completed
	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.todos = next
	s.loggerWith(ctx, "ToggleComplete", "todo_id", id).InfoContext(ctx, "todo toggled", "completed", next[idx].Completed)
	return nil
}

// SetFilter changes the view filter. The list itself is never modified.
func (s *TodoService) SetFilter(mode FilterMode) error {
	if s == nil {
		return fmt.Errorf("TodoService is nil")
	}
	parsed, ok := ParseFilterMode(string(mode))
	if !ok {
		vErr := &ValidationError{}
		vErr.add("filter", "filter must be All, Completed or Pending")
		return vErr
	}

	s.mu.Lock()
	s.filter = parsed
	s.mu.Unlock()
	return nil
}

// Filter returns the active view filter.
func (s *TodoService) Filter() FilterMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Todos returns a copy of the full list in insertion order.
func (s *TodoService) Todos() []TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTodos(s.todos)
}

// Filtered returns the items selected by the active filter.
func (s *TodoService) Filtered() []TodoItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterTodos(s.todos, s.filter)
}

// Summary counts the live list.
func (s *TodoService) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(s.todos)
}

// Draft returns the current todo form fields.
func (s *TodoService) Draft() TodoInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Weather returns the weather panel state.
func (s *TodoService) Weather() WeatherState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := WeatherState{Error: s.weatherError}
	if s.snapshot != nil {
		snapshot := *s.snapshot
		state.Snapshot = &snapshot
	}
	return state
}

// FetchWeather looks up the weather for city and replaces the snapshot. A blank city is ignored.
// On failure the snapshot is cleared, the inline error is set and an error wrapping
// ErrWeatherUnavailable is returned; the todo list is never touched. When lookups overlap, the
// most recently issued one decides the final state.
func (s *TodoService) FetchWeather(ctx context.Context, city string) (err error) {
	if s == nil {
		return fmt.Errorf("TodoService is nil")
	}

	city = strings.TrimSpace(city)
	if city == "" {
		return nil
	}

	logger := s.loggerWith(ctx, "FetchWeather", "city", city)

	s.mu.Lock()
	s.weatherSeq++
	seq := s.weatherSeq
	s.mu.Unlock()

	var report WeatherReport
	if s.weather == nil {
		err = errors.New("weather provider not configured")
	} else {
		report, err = s.weather.Current(ctx, city)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.weatherSeq {
		logger.DebugContext(ctx, "discarding superseded weather response", "error", err)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
		}
		return nil
	}

	if err != nil {
		s.snapshot = nil
		s.weatherError = MessageWeatherUnavailable
		logger.WarnContext(ctx, "weather lookup failed", "error", err, "error_kind", ErrorKind(ErrWeatherUnavailable))
		return fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}

	s.snapshot = &WeatherSnapshot{
		Temperature: report.Temperature,
		Description: report.Description,
		IconURL:     report.IconURL,
	}
	s.weatherError = ""
	logger.InfoContext(ctx, "weather updated", "temperature", report.Temperature, "description", report.Description)
	return nil
}

func (s *TodoService) indexOf(id int64) int {
	for i, item := range s.todos {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneTodos(items []TodoItem) []TodoItem {
	out := make([]TodoItem, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}

func normalizeTodoInput(input TodoInput) TodoInput {
	normalized := TodoInput{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Priority:    input.Priority,
	}
	if priority, ok := ParsePriority(string(input.Priority)); ok {
		normalized.Priority = priority
	}
	return normalized
}

func validateTodoInput(input TodoInput) *ValidationError {
	vErr := &ValidationError{}
	vErr.merge(validateTitle(input.Title))
	vErr.merge(validatePriority(input.Priority))
	return vErr
}

func validateTitle(title string) *ValidationError {
	if title != "" {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("title", "title is required")
	return vErr
}

func validatePriority(priority Priority) *ValidationError {
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("priority", "priority must be High, Medium or Low")
	return vErr
}
