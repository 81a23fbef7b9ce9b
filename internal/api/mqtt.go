package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/rules-engine/internal/service"
)

// messageResponse is the body returned by the start and stop endpoints.
type messageResponse struct {
	Message string `json:"message"`
}

// handleStartMQTT connects to the broker and subscribes to the request topics.
func (s *Server) handleStartMQTT(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicId")

	if err := s.lifecycle.Start(r.Context(), topicID); err != nil {
		s.logger.Error("starting mqtt service failed",
			"topic_id", topicID,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		if errors.Is(err, service.ErrConnection) {
			writeError(w, http.StatusBadGateway, ErrCodeBadGateway, "failed to connect to broker")
			return
		}
		writeInternalError(w, "failed to start mqtt service")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("MQTT service started for topic: %s", topicID),
	})
}

// handleStopMQTT disconnects from the broker. Stopping an idle service succeeds.
func (s *Server) handleStopMQTT(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicId")

	if err := s.lifecycle.Stop(r.Context(), topicID); err != nil {
		s.logger.Error("stopping mqtt service failed",
			"topic_id", topicID,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "failed to stop mqtt service")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("MQTT service stopped for topic: %s", topicID),
	})
}
