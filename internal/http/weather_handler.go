package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/weather-todo/internal/application"
)

type weatherService interface {
	FetchWeather(ctx context.Context, city string) error
	Weather() application.WeatherState
}

type WeatherHandler struct {
	service   weatherService
	responder responder
	logger    *slog.Logger
}

func NewWeatherHandler(service weatherService, logger *slog.Logger) *WeatherHandler {
	base := defaultLogger(logger)
	return &WeatherHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *WeatherHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "WeatherHandler", operation, attrs...)
}

// Fetch looks up the weather for the posted city. A blank city leaves the state unchanged.
func (h *WeatherHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req weatherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Fetch", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode weather request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.FetchWeather(r.Context(), req.City); err != nil {
		h.log(r.Context(), "Fetch", "city", req.City).WarnContext(r.Context(), "weather lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeatherResponse(h.service.Weather()))
}

func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeatherResponse(h.service.Weather()))
}

type weatherRequest struct {
	City string `json:"city"`
}

type weatherResponse struct {
	Weather *application.WeatherSnapshot `json:"weather"`
	Error   string                       `json:"error,omitempty"`
}

func toWeatherResponse(state application.WeatherState) weatherResponse {
	return weatherResponse{Weather: state.Snapshot, Error: state.Error}
}
