package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/weather-todo/internal/application"
	"github.com/example/weather-todo/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// a deterministic clock and a canned weather provider.
type ServiceFactory struct {
	Clock   *Clock
	Weather *StaticWeather
	Logger  *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults. The default clock steps one second per
// reading so todos created in a row get distinct ids.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:   NewSteppingClock(time.Time{}, time.Second),
		Weather: NewStaticWeather(application.WeatherReport{Temperature: 20, Description: "clear sky"}),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithWeather overrides the weather provider used by the factory.
func WithWeather(weather *StaticWeather) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Weather = weather
	}
}

// WithLogger sets the logger handed to every service.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewSessionManager builds a session manager over store.
func (f *ServiceFactory) NewSessionManager(store persistence.KeyValueStore) *application.SessionManager {
	return application.NewSessionManagerWithLogger(store, f.Clock.NowFunc(), f.Logger)
}

// NewTodoService builds a todo service over store using the factory weather provider.
func (f *ServiceFactory) NewTodoService(store persistence.KeyValueStore) *application.TodoService {
	var weather application.WeatherProvider
	if f.Weather != nil {
		weather = f.Weather
	}
	return application.NewTodoServiceWithLogger(store, weather, f.Clock.NowFunc(), f.Logger)
}

// NewApp builds both services over store. State is not restored; call App.Restore when needed.
func (f *ServiceFactory) NewApp(store persistence.KeyValueStore) *application.App {
	return application.NewApp(f.NewSessionManager(store), f.NewTodoService(store))
}
