package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Todos      *TodoHandler
	Weather    *WeatherHandler
	Views      *ViewHandler
	Session    SessionChecker
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

// NewRouter wires the JSON API and the browser views. Todo and weather routes require a logged in user.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	logger := defaultLogger(cfg.Logger)

	api := RequireSession(cfg.Session, logger)
	page := RequireSessionPage(cfg.Session)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		newResponder(logger).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if cfg.Auth != nil {
		router.HandleFunc("/login", cfg.Auth.Login).Methods(http.MethodPost)
		router.HandleFunc("/logout", cfg.Auth.Logout).Methods(http.MethodPost)
		router.HandleFunc("/session", cfg.Auth.Session).Methods(http.MethodGet)
	}

	if cfg.Todos != nil {
		router.Handle("/todos", api(http.HandlerFunc(cfg.Todos.List))).Methods(http.MethodGet)
		router.Handle("/todos", api(http.HandlerFunc(cfg.Todos.Create))).Methods(http.MethodPost)
		router.Handle("/todos/{id}/toggle", api(http.HandlerFunc(cfg.Todos.Toggle))).Methods(http.MethodPost)
		router.Handle("/todos/{id}", api(http.HandlerFunc(cfg.Todos.Delete))).Methods(http.MethodDelete)
		router.Handle("/filter", api(http.HandlerFunc(cfg.Todos.SetFilter))).Methods(http.MethodPut)
		router.Handle("/summary", api(http.HandlerFunc(cfg.Todos.Summary))).Methods(http.MethodGet)
	}

	if cfg.Weather != nil {
		router.Handle("/weather", api(http.HandlerFunc(cfg.Weather.Current))).Methods(http.MethodGet)
		router.Handle("/weather", api(http.HandlerFunc(cfg.Weather.Fetch))).Methods(http.MethodPost)
	}

	if cfg.Views != nil {
		router.HandleFunc("/", cfg.Views.Index).Methods(http.MethodGet)
		ui := router.PathPrefix("/ui").Methods(http.MethodPost).Subrouter()
		ui.HandleFunc("/login", cfg.Views.Login)
		ui.HandleFunc("/logout", cfg.Views.Logout)
		ui.Handle("/todos", page(http.HandlerFunc(cfg.Views.AddTodo)))
		ui.Handle("/todos/{id}/toggle", page(http.HandlerFunc(cfg.Views.Toggle)))
		ui.Handle("/todos/{id}/delete", page(http.HandlerFunc(cfg.Views.Delete)))
		ui.Handle("/filter", page(http.HandlerFunc(cfg.Views.Filter)))
		ui.Handle("/weather", page(http.HandlerFunc(cfg.Views.Weather)))
	}

	var handler http.Handler = router
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}
