package testfixtures

import (
	"context"
	"errors"
	"sync"

	"github.com/example/weather-todo/internal/application"
)

// ErrWeatherDown is the failure StaticWeather returns once Fail is called.
var ErrWeatherDown = errors.New("testfixtures: weather unavailable")

// StaticWeather is a WeatherProvider returning a fixed report per city.
type StaticWeather struct {
	mu       sync.Mutex
	reports  map[string]application.WeatherReport
	fallback application.WeatherReport
	err      error
	calls    []string
}

// NewStaticWeather returns a provider answering every city with fallback.
func NewStaticWeather(fallback application.WeatherReport) *StaticWeather {
	return &StaticWeather{reports: make(map[string]application.WeatherReport), fallback: fallback}
}

// Set registers a report for city.
func (w *StaticWeather) Set(city string, report application.WeatherReport) {
	w.mu.Lock()
	w.reports[city] = report
	w.mu.Unlock()
}

// Fail makes every subsequent lookup return err, or ErrWeatherDown when err is nil. Fail(nil) after a
// failure keeps failing; use Recover to clear it.
func (w *StaticWeather) Fail(err error) {
	if err == nil {
		err = ErrWeatherDown
	}
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

// Recover clears a failure set by Fail.
func (w *StaticWeather) Recover() {
	w.mu.Lock()
	w.err = nil
	w.mu.Unlock()
}

// Calls returns the cities looked up so far.
func (w *StaticWeather) Calls() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.calls...)
}

// Current implements application.WeatherProvider.
func (w *StaticWeather) Current(_ context.Context, city string) (application.WeatherReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, city)
	if w.err != nil {
		return application.WeatherReport{}, w.err
	}
	if report, ok := w.reports[city]; ok {
		return report, nil
	}
	return w.fallback, nil
}
