package application

import "strings"

// TimestampLayout renders instants the way the todo view displays them.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// UserRecord is the persisted identity of the logged in user.
type UserRecord struct {
	Username  string `json:"username"`
	LastLogin string `json:"lastLogin"`
}

// Priority ranks a todo item.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority resolves a priority name case-insensitively. Empty input means Medium.
func ParsePriority(value string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return PriorityHigh, true
	case "", "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	default:
		return "", false
	}
}

// FilterMode selects which todos the view displays.
type FilterMode string

const (
	FilterAll       FilterMode = "All"
	FilterCompleted FilterMode = "Completed"
	FilterPending   FilterMode = "Pending"
)

// ParseFilterMode resolves a filter name case-insensitively. Empty input means All.
func ParseFilterMode(value string) (FilterMode, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return FilterAll, true
	case "completed":
		return FilterCompleted, true
	case "pending":
		return FilterPending, true
	default:
		return "", false
	}
}

// WeatherInfo is the weather snapshot attached to a todo at creation time.
type WeatherInfo struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
}

// TodoItem is a single entry of the todo list.
type TodoItem struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    Priority     `json:"priority"`
	Completed   bool         `json:"completed"`
	CreatedAt   string       `json:"createdAt"`
	WeatherInfo *WeatherInfo `json:"weatherInfo"`
}

func (t TodoItem) clone() TodoItem {
	if t.WeatherInfo != nil {
		info := *t.WeatherInfo
		t.WeatherInfo = &info
	}
	return t
}

// TodoInput captures the todo form fields.
type TodoInput struct {
	Title       string
	Description string
	Priority    Priority
}

// DefaultTodoInput is the state of the form after a successful add.
func DefaultTodoInput() TodoInput {
	return TodoInput{Priority: PriorityMedium}
}

// WeatherReport is what a WeatherProvider returns for a city.
type WeatherReport struct {
	Temperature float64
	Description string
	IconURL     string
}

// WeatherSnapshot is the most recently fetched weather.
type WeatherSnapshot struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	IconURL     string  `json:"iconUrl"`
}

// WeatherState is the weather panel of the view: a snapshot or an inline error, never both.
type WeatherState struct {
	Snapshot *WeatherSnapshot
	Error    string
}

// Summary counts the todo list.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// AppView is everything the root view renders.
type AppView struct {
	Authenticated bool
	User          *UserRecord
	Todos         []TodoItem
	Filter        FilterMode
	Summary       Summary
	Weather       WeatherState
	Draft         TodoInput
}
