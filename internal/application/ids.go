package application

import (
	"sync"
	"time"
)

// MonotonicIDs issues todo ids from the creation time in Unix milliseconds.
// Two items created within the same millisecond, or after the clock stepped back,
// receive last+1 so ids stay unique and strictly increasing.
type MonotonicIDs struct {
	mu   sync.Mutex
	last int64
}

// NewMonotonicIDs returns an empty generator.
func NewMonotonicIDs() *MonotonicIDs {
	return &MonotonicIDs{}
}

// NextAt returns the id for an item created at t.
func (g *MonotonicIDs) NextAt(t time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := t.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe raises the floor so ids issued later stay above id.
func (g *MonotonicIDs) Observe(id int64) {
	g.mu.Lock()
	if id > g.last {
		g.last = id
	}
	g.mu.Unlock()
}
