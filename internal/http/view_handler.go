package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/weather-todo/internal/application"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type viewSource interface {
	View() application.AppView
}

// ViewDeps groups the services behind the browser views.
type ViewDeps struct {
	View    viewSource
	Session sessionService
	Todos   todoService
	Weather weatherService
}

// ViewHandler renders the root page and handles its form posts. Every successful post redirects to /.
type ViewHandler struct {
	deps   ViewDeps
	logger *slog.Logger
}

func NewViewHandler(deps ViewDeps, logger *slog.Logger) *ViewHandler {
	return &ViewHandler{deps: deps, logger: defaultLogger(logger)}
}

func (h *ViewHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ViewHandler", operation, attrs...)
}

type pageData struct {
	View       application.AppView
	Username   string
	LoginError string
	Priorities []application.Priority
	Filters    []application.FilterMode
}

// Index shows the login form or, once logged in, the todo view.
func (h *ViewHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageData{})
}

func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	ok, err := h.deps.Session.Login(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		h.log(r.Context(), "Login").ErrorContext(r.Context(), "login failed", "error", err, "error_kind", application.ErrorKind(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !ok {
		h.render(w, r, http.StatusOK, pageData{Username: username, LoginError: application.MessageMissingCredentials})
		return
	}
	redirectHome(w, r)
}

func (h *ViewHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Session.Logout(r.Context()); err != nil {
		h.log(r.Context(), "Logout").ErrorContext(r.Context(), "failed to clear persisted session", "error", err)
	}
	redirectHome(w, r)
}

// AddTodo submits the todo form. A rejected submission keeps the entered values in the form.
func (h *ViewHandler) AddTodo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	_, err := h.deps.Todos.AddTodo(r.Context(), application.TodoInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    application.Priority(r.PostFormValue("priority")),
	})
	var vErr *application.ValidationError
	if err != nil && !errors.As(err, &vErr) {
		h.log(r.Context(), "AddTodo").ErrorContext(r.Context(), "todo not added", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

func (h *ViewHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.mutateTodo(w, r, "Toggle", h.deps.Todos.ToggleComplete)
}

func (h *ViewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutateTodo(w, r, "Delete", h.deps.Todos.DeleteTodo)
}

func (h *ViewHandler) mutateTodo(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, int64) error) {
	id, err := strconv.ParseInt(strings.TrimSpace(mux.Vars(r)["id"]), 10, 64)
	if err != nil {
		http.Error(w, errInvalidTodoID.Error(), http.StatusBadRequest)
		return
	}
	if err := apply(r.Context(), id); err != nil {
		h.log(r.Context(), operation, "todo_id", id).ErrorContext(r.Context(), "todo update failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	redirectHome(w, r)
}

func (h *ViewHandler) Filter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.deps.Todos.SetFilter(application.FilterMode(r.PostFormValue("filter"))); err != nil {
		http.Error(w, "filter must be All, Completed or Pending", http.StatusBadRequest)
		return
	}
	redirectHome(w, r)
}

// Weather submits the city form. A failed lookup is shown inline on the next render.
func (h *ViewHandler) Weather(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.deps.Weather.FetchWeather(r.Context(), r.PostFormValue("city")); err != nil {
		h.log(r.Context(), "Weather").InfoContext(r.Context(), "weather lookup failed", "error", err, "error_kind", application.ErrorKind(err))
	}
	redirectHome(w, r)
}

func (h *ViewHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.View = h.deps.View.View()
	data.Priorities = []application.Priority{application.PriorityHigh, application.PriorityMedium, application.PriorityLow}
	data.Filters = []application.FilterMode{application.FilterAll, application.FilterCompleted, application.FilterPending}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.log(r.Context(), "render").ErrorContext(r.Context(), "failed to render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
