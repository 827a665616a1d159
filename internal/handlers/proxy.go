package handlers

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/walkability/walkscore-proxy/internal/middleware"
	"github.com/walkability/walkscore-proxy/internal/models"
	"github.com/walkability/walkscore-proxy/internal/observability"
	"github.com/walkability/walkscore-proxy/internal/walkscore"
)

// WalkScore handles GET /walkscore?lat=...&lon=...&address=...
// The upstream status and body are relayed unmodified.
func (h *Handler) WalkScore(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := models.ScoreQuery{
		Lat:     query.Get("lat"),
		Lon:     query.Get("lon"),
		Address: query.Get("address"),
	}

	ctx, span := observability.StartSpan(r.Context(), "walkscore.score",
		attribute.String("walkscore.lat", q.Lat),
		attribute.String("walkscore.lon", q.Lon),
	)
	defer span.End()

	res, err := h.scores.Score(ctx, q)
	switch {
	case errors.Is(err, walkscore.ErrMissingAPIKey):
		h.log.Error("walkscore request rejected: api key not configured")
		h.writeError(w, http.StatusInternalServerError, MsgMissingAPIKey, "")
		return
	case errors.Is(err, walkscore.ErrMissingParams):
		h.writeError(w, http.StatusBadRequest, MsgMissingParams, "")
		return
	case err != nil:
		observability.SetSpanError(ctx, err)
		h.log.Error("Walk Score API error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.writeError(w, http.StatusInternalServerError, MsgUpstreamFail, upstreamDetails(err))
		return
	}

	span.SetAttributes(attribute.Int("walkscore.status", res.StatusCode))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	if _, err := w.Write(res.Body); err != nil {
		h.log.Warn("failed to relay walkscore body", "error", err)
	}
}

// upstreamDetails is the underlying failure reason without the wrapper prefix.
func upstreamDetails(err error) string {
	var upErr *walkscore.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Err.Error()
	}
	return err.Error()
}
