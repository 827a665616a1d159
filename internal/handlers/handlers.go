// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/walkability/walkscore-proxy/internal/models"
	"github.com/walkability/walkscore-proxy/internal/walkscore"
)

// Fixed client-facing messages. Browser code matches on these strings.
const (
	MsgMissingAPIKey = "Server missing WALKSCORE_API_KEY"
	MsgMissingParams = "Missing required parameters: lat, lon, address"
	MsgUpstreamFail  = "Failed to fetch Walk Score"
	MsgNotFound      = "Not found. Use /walkscore?lat=...&lon=...&address=..."
	MsgMethod        = "Method not allowed. Use GET or OPTIONS"
)

// Scorer looks up a walkability score. *walkscore.Client implements it.
type Scorer interface {
	Score(ctx context.Context, q models.ScoreQuery) (*walkscore.Result, error)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	scores Scorer
	log    *slog.Logger
}

// New creates a new Handler.
func New(scores Scorer, log *slog.Logger) *Handler {
	return &Handler{
		scores: scores,
		log:    log,
	}
}

// ---- Helper Functions ----

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, details string) {
	h.writeJSON(w, status, models.ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// ---- Health ----

// Health handles GET / and GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.HealthResponse{OK: true})
}

// ---- Fallbacks ----

// NotFound handles any path without a route.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, http.StatusNotFound, MsgNotFound, "")
}

// MethodNotAllowed handles a known path requested with an unsupported method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, OPTIONS")
	h.writeError(w, http.StatusMethodNotAllowed, MsgMethod, "")
}
