package application

import (
	"context"
	"sync"
	"time"

	"github.com/example/weather-todo/internal/persistence"
)

type memoryStoreStub struct {
	mu        sync.Mutex
	data      map[string][]byte
	getErr    error
	putErr    error
	deleteErr error
	puts      int
	deletes   int
}

func newMemoryStoreStub() *memoryStoreStub {
	return &memoryStoreStub{data: make(map[string][]byte)}
}

func (m *memoryStoreStub) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	value, ok := m.data[key]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *memoryStoreStub) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryStoreStub) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *memoryStoreStub) Keys(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func (m *memoryStoreStub) raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	return value, ok
}

type weatherStub struct {
	mu      sync.Mutex
	report  WeatherReport
	err     error
	calls   []string
	release map[string]chan struct{}
}

func (w *weatherStub) Current(ctx context.Context, city string) (WeatherReport, error) {
	w.mu.Lock()
	w.calls = append(w.calls, city)
	gate := w.release[city]
	report, err := w.report, w.err
	w.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return WeatherReport{}, ctx.Err()
		}
	}
	if err != nil {
		return WeatherReport{}, err
	}
	if report.Description == "" {
		report.Description = city
	}
	return report, nil
}

// entryStoreStub also reports write times, like the SQLite storage.
type entryStoreStub struct {
	*memoryStoreStub
	updatedAt time.Time
}

func (e *entryStoreStub) GetEntry(ctx context.Context, key string) (persistence.Entry, error) {
	value, err := e.Get(ctx, key)
	if err != nil {
		return persistence.Entry{}, err
	}
	return persistence.Entry{Key: key, Value: value, UpdatedAt: e.updatedAt}, nil
}
