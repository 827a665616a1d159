package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/walkability/walkscore-proxy/internal/handlers"
	"github.com/walkability/walkscore-proxy/internal/middleware"
	"github.com/walkability/walkscore-proxy/internal/observability"
)

// RouterOptions toggles optional routes.
type RouterOptions struct {
	MetricsEnabled bool
}

// NewRouter wires middleware and routes. CORS headers are set before
// anything else runs so every response, errors included, carries them.
func NewRouter(h *handlers.Handler, opts RouterOptions, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.Logger(log))
	r.Use(observability.MetricsMiddleware)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Preflight)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// Routes
	// Health answers any method so platform probes (HEAD, POST) succeed.
	r.HandleFunc("/", h.Health)
	r.HandleFunc("/health", h.Health)
	r.Get("/walkscore", h.WalkScore)

	if opts.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())
	}

	return r
}
