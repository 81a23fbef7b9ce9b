package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	// Broker session controls, kept at the paths existing callers use.
	r.Route("/api/mqtt", func(r chi.Router) {
		r.Get("/start/{topicId}", s.handleStartMQTT)
		r.Get("/stop/{topicId}", s.handleStopMQTT)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/events", s.handleListEvents)
	})

	return r
}

// healthCheckTimeout bounds all dependency checks for one health request.
const healthCheckTimeout = 3 * time.Second

// handleHealth reports the broker session state and the result of every
// dependency check. A failed check answers 503 with status "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	resp := map[string]any{
		"status":           status,
		"version":          s.version,
		"connection_state": s.lifecycle.State().String(),
		"checks":           checks,
	}
	if s.broker != nil {
		resp["broker_connected"] = s.broker.HealthCheck(ctx) == nil
	}

	writeJSON(w, code, resp)
}
