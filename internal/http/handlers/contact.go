package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/smilepoint-dental/contact-service/internal/contact"
	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

// ContactHandler adapts the contact pipeline to net/http.
type ContactHandler struct {
	pipeline *contact.Pipeline
	logger   *logging.Logger
}

// NewContactHandler creates the HTTP adapter for the contact pipeline.
func NewContactHandler(pipeline *contact.Pipeline, logger *logging.Logger) *ContactHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContactHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contact.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode contact request", "error", err)
		writeJSON(w, http.StatusBadRequest, contact.Response{Message: contact.GenericFailureMessage})
		return
	}

	result := h.pipeline.Process(r.Context(), req, ClientIP(r))
	writeJSON(w, result.Status, contact.Response{Message: result.Message})
}

// Preflight handles OPTIONS /api/contact: 200 with no body.
func (h *ContactHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HealthCheck handles GET /health.
func (h *ContactHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ClientIP derives the client address: first hop of X-Forwarded-For, then
// X-Real-IP, then the transport-level remote address, else "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
