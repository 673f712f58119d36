package application

import "testing"

func TestFilterTodos(t *testing.T) {
	t.Parallel()

	items := []TodoItem{
		{ID: 1, Title: "a", Completed: true},
		{ID: 2, Title: "b"},
		{ID: 3, Title: "c", Completed: true, WeatherInfo: &WeatherInfo{Temperature: 1, Description: "x"}},
	}

	tests := []struct {
		name string
		mode FilterMode
		want []int64
	}{
		{name: "all", mode: FilterAll, want: []int64{1, 2, 3}},
		{name: "completed", mode: FilterCompleted, want: []int64{1, 3}},
		{name: "pending", mode: FilterPending, want: []int64{2}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := FilterTodos(items, tc.mode)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d items, got %d", len(tc.want), len(got))
			}
			for i, id := range tc.want {
				if got[i].ID != id {
					t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}

	t.Run("completed and pending partition the list", func(t *testing.T) {
		t.Parallel()

		completed := FilterTodos(items, FilterCompleted)
		pending := FilterTodos(items, FilterPending)
		if len(completed)+len(pending) != len(items) {
			t.Fatalf("expected partition of %d items, got %d + %d", len(items), len(completed), len(pending))
		}
	})

	t.Run("result does not alias the input", func(t *testing.T) {
		t.Parallel()

		local := []TodoItem{{ID: 9, WeatherInfo: &WeatherInfo{Description: "sun"}}}
		got := FilterTodos(local, FilterAll)
		got[0].WeatherInfo.Description = "changed"
		if local[0].WeatherInfo.Description != "sun" {
			t.Fatalf("expected input to be left untouched")
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	if got := Summarize(nil); got != (Summary{}) {
		t.Fatalf("expected zero summary, got %#v", got)
	}

	got := Summarize([]TodoItem{{Completed: true}, {}, {}, {Completed: true}})
	if got != (Summary{Total: 4, Completed: 2, Pending: 2}) {
		t.Fatalf("unexpected summary %#v", got)
	}
}

func TestParsePriorityAndFilterMode(t *testing.T) {
	t.Parallel()

	priorities := map[string]Priority{"": PriorityMedium, "HIGH": PriorityHigh, " low ": PriorityLow, "Medium": PriorityMedium}
	for input, want := range priorities {
		got, ok := ParsePriority(input)
		if !ok || got != want {
			t.Fatalf("ParsePriority(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Fatalf("expected unknown priority to be rejected")
	}

	modes := map[string]FilterMode{"": FilterAll, "completed": FilterCompleted, "PENDING": FilterPending}
	for input, want := range modes {
		got, ok := ParseFilterMode(input)
		if !ok || got != want {
			t.Fatalf("ParseFilterMode(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}
	if _, ok := ParseFilterMode("archived"); ok {
		t.Fatalf("expected unknown filter to be rejected")
	}
}
