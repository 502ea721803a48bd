package handlers

import (
	"net/http"
	"time"

	"persona-relay/internal/persona"
)

const version = "0.1.0"

type relayInfo interface {
	Configured() bool
	Persona() persona.Persona
}

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"` // "pass" or "fail"
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string           `json:"status"` // "ok" or "degraded"
	Version   string           `json:"version"`
	Persona   string           `json:"persona"`
	Model     string           `json:"model"`
	Transport string           `json:"transport"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

type RootResponse struct {
	Name    string   `json:"name"`
	Persona string   `json:"persona"`
	Version string   `json:"version"`
	Routes  []string `json:"routes"`
}

type HealthHandler struct {
	relay     relayInfo
	model     string
	transport string
	now       func() time.Time
}

func NewHealthHandler(relay relayInfo, model, transport string) *HealthHandler {
	return &HealthHandler{
		relay:     relay,
		model:     model,
		transport: transport,
		now:       time.Now,
	}
}

// Health never calls upstream; it only reports local configuration.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{}
	status := "ok"
	statusCode := http.StatusOK

	if h.relay.Configured() {
		checks["gemini_api_key"] = Check{Status: "pass"}
	} else {
		checks["gemini_api_key"] = Check{Status: "fail", Message: "not configured"}
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:    status,
		Version:   version,
		Persona:   h.relay.Persona().Name,
		Model:     h.model,
		Transport: h.transport,
		Checks:    checks,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    h.relay.Persona().Title,
		Persona: h.relay.Persona().Name,
		Version: version,
		Routes:  []string{"POST /api/chat", "GET /health", "GET /metrics"},
	})
}
