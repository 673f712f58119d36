package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/weather-todo/internal/application"
)

type sessionService interface {
	Login(ctx context.Context, username, password string) (bool, error)
	Logout(ctx context.Context) error
	Authenticated() bool
	User() (application.UserRecord, bool)
}

type AuthHandler struct {
	service   sessionService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service sessionService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Login", "username", req.Username)

	ok, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		logger.ErrorContext(r.Context(), "login failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrInvalidCredentials)
		return
	}

	user, _ := h.service.User()
	logger.InfoContext(r.Context(), "user logged in")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Authenticated: true, User: &user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Logout")
	if err := h.service.Logout(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "failed to clear persisted session", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "user logged out")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Session reports the login state. It is reachable without a session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := sessionResponse{}
	if user, ok := h.service.User(); ok {
		resp.Authenticated = true
		resp.User = &user
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool                    `json:"authenticated"`
	User          *application.UserRecord `json:"user"`
}
