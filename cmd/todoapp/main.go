package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/weather-todo/internal/application"
	"github.com/example/weather-todo/internal/config"
	httptransport "github.com/example/weather-todo/internal/http"
	"github.com/example/weather-todo/internal/logging"
	"github.com/example/weather-todo/internal/persistence/sqlite"
	"github.com/example/weather-todo/internal/weather"
)

func main() {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		bootstrap.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HTTPPort))
	if err != nil {
		logger.Error("failed to listen", "port", cfg.HTTPPort, "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger, listener); err != nil {
		logger.Error("server encountered error", "error", err)
		stop()
		closer.Close()
		os.Exit(1)
	}
}

// run serves the todo app on listener until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger, listener net.Listener) error {
	storage, err := openStorage(ctx, cfg.SQLiteDSN, logger)
	if err != nil {
		_ = listener.Close()
		return err
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	client := weather.NewClient(weather.Options{
		APIKey:        cfg.WeatherAPIKey,
		BaseURL:       cfg.WeatherBaseURL,
		IconBaseURL:   cfg.WeatherIconBaseURL,
		Timeout:       cfg.WeatherTimeout,
		RatePerMinute: cfg.WeatherRatePerMinute,
		Logger:        logger,
	})
	if cfg.WeatherAPIKey == "" {
		logger.Warn("weather API key not configured; weather lookups will fail")
	}

	now := time.Now
	session := application.NewSessionManagerWithLogger(storage, now, logger)
	todos := application.NewTodoServiceWithLogger(storage, newWeatherProvider(client), now, logger)
	app := application.NewApp(session, todos)
	if err := app.Restore(ctx); err != nil {
		_ = listener.Close()
		return fmt.Errorf("restore state: %w", err)
	}

	server := &http.Server{
		Handler:           newHandler(app, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("todo app listening", "addr", listener.Addr().String())
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("todo app stopped")
	return nil
}

func openStorage(ctx context.Context, dsn string, logger *slog.Logger) (*sqlite.Storage, error) {
	storage, err := sqlite.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	version, err := storage.SchemaVersion(ctx)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	keys, err := storage.Keys(ctx)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("list stored keys: %w", err)
	}
	logger.Info("storage ready", "dsn", dsn, "schema_version", version, "stored_keys", keys)
	return storage, nil
}

func newHandler(app *application.App, logger *slog.Logger) http.Handler {
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:    httptransport.NewAuthHandler(app.Session, logger),
		Todos:   httptransport.NewTodoHandler(app.Todos, logger),
		Weather: httptransport.NewWeatherHandler(app.Todos, logger),
		Views: httptransport.NewViewHandler(httptransport.ViewDeps{
			View:    app,
			Session: app.Session,
			Todos:   app.Todos,
			Weather: app.Todos,
		}, logger),
		Session: app.Session,
		Logger:  logger,
	})
	return httptransport.RequestLogger(logger)(router)
}

type weatherProvider struct {
	client *weather.Client
}

func newWeatherProvider(client *weather.Client) *weatherProvider {
	return &weatherProvider{client: client}
}

func (p *weatherProvider) Current(ctx context.Context, city string) (application.WeatherReport, error) {
	report, err := p.client.Current(ctx, city)
	if err != nil {
		return application.WeatherReport{}, err
	}
	return application.WeatherReport{
		Temperature: report.Temperature,
		Description: report.Description,
		IconURL:     report.IconURL,
	}, nil
}
