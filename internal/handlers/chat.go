package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"persona-relay/internal/metrics"
	"persona-relay/internal/middleware"
	"persona-relay/internal/models"
	"persona-relay/internal/services"
)

const (
	msgAPIKeyNotConfigured = "Gemini API key not configured"
	msgProcessingFailed    = "An error occurred while processing your request"
	msgBodyTooLarge        = "request body too large"
)

type chatGenerator interface {
	Generate(ctx context.Context, messages []models.Message) (string, error)
}

type ChatHandler struct {
	generator chatGenerator
	logger    zerolog.Logger
}

func NewChatHandler(generator chatGenerator, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		generator: generator,
		logger:    logger.With().Str("component", "chat").Logger(),
	}
}

// Chat relays the posted transcript upstream and returns {message} or {error}.
// Every failure is answered here; nothing propagates to the transport layer.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Str("request_id", requestID).Interface("panic", rec).Msg("chat handler panicked")
			metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
			writeJSON(w, http.StatusInternalServerError, errorResp(msgProcessingFailed))
		}
	}()

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp(msgBodyTooLarge))
			return
		}
		h.fail(w, requestID, fmt.Errorf("decode request body: %w", err))
		return
	}

	reply, err := h.generator.Generate(r.Context(), req.Messages)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, models.ChatResponse{Message: reply})
}

// fail maps an error onto the relay's error taxonomy.
func (h *ChatHandler) fail(w http.ResponseWriter, requestID string, err error) {
	var upErr *services.UpstreamError

	switch {
	case errors.Is(err, services.ErrAPIKeyNotConfigured):
		h.logger.Error().Str("request_id", requestID).Msg("GEMINI_API_KEY is not set")
		metrics.ChatRequestsTotal.WithLabelValues("not_configured").Inc()
		writeJSON(w, http.StatusInternalServerError, errorResp(msgAPIKeyNotConfigured))

	case errors.As(err, &upErr):
		metrics.ChatRequestsTotal.WithLabelValues("upstream_error").Inc()
		status := upErr.Status
		if status < 100 || status > 999 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResp(upErr.Message))

	default:
		h.logger.Error().Str("request_id", requestID).Err(err).Msg("request error")
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, errorResp(msgProcessingFailed))
	}
}
