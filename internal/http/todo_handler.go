package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/weather-todo/internal/application"
)

type todoService interface {
	AddTodo(ctx context.Context, input application.TodoInput) (application.TodoItem, error)
	DeleteTodo(ctx context.Context, id int64) error
	ToggleComplete(ctx context.Context, id int64) error
	SetFilter(mode application.FilterMode) error
	Filter() application.FilterMode
	Todos() []application.TodoItem
	Filtered() []application.TodoItem
	Summary() application.Summary
}

type TodoHandler struct {
	service   todoService
	responder responder
	logger    *slog.Logger
}

func NewTodoHandler(service todoService, logger *slog.Logger) *TodoHandler {
	base := defaultLogger(logger)
	return &TodoHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TodoHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TodoHandler", operation, attrs...)
}

// List returns the todos selected by the stored filter, or by the filter query parameter when present.
// The query parameter does not change the stored filter.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw, present := r.URL.Query()["filter"]
	if !present {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, h.currentList())
		return
	}

	mode, ok := application.ParseFilterMode(firstValue(raw))
	if !ok {
		h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"filter": "filter must be All, Completed or Pending"},
		})
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse{
		Todos:   application.FilterTodos(h.service.Todos(), mode),
		Filter:  mode,
		Summary: h.service.Summary(),
	})
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode todo request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	item, err := h.service.AddTodo(r.Context(), req.toInput())
	if err != nil {
		logger.InfoContext(r.Context(), "todo rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("todo_id", item.ID).InfoContext(r.Context(), "todo created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, item)
}

func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := todoIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Toggle", "error_kind", "bad_request").InfoContext(r.Context(), "invalid todo id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTodoID)
		return
	}

	if err := h.service.ToggleComplete(r.Context(), id); err != nil {
		h.log(r.Context(), "Toggle", "todo_id", id).ErrorContext(r.Context(), "toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.currentList())
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := todoIDFromRequest(r)
	if !ok {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").InfoContext(r.Context(), "invalid todo id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTodoID)
		return
	}

	if err := h.service.DeleteTodo(r.Context(), id); err != nil {
		h.log(r.Context(), "Delete", "todo_id", id).ErrorContext(r.Context(), "delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TodoHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.SetFilter(application.FilterMode(req.Filter)); err != nil {
		h.log(r.Context(), "SetFilter", "filter", req.Filter).InfoContext(r.Context(), "filter rejected", "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.currentList())
}

func (h *TodoHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.service.Summary())
}

func (h *TodoHandler) currentList() listResponse {
	return listResponse{
		Todos:   h.service.Filtered(),
		Filter:  h.service.Filter(),
		Summary: h.service.Summary(),
	}
}

func todoIDFromRequest(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

type todoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (r todoRequest) toInput() application.TodoInput {
	return application.TodoInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    application.Priority(r.Priority),
	}
}

type filterRequest struct {
	Filter string `json:"filter"`
}

type listResponse struct {
	Todos   []application.TodoItem `json:"todos"`
	Filter  application.FilterMode `json:"filter"`
	Summary application.Summary    `json:"summary"`
}
