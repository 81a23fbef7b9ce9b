package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/rules-engine/internal/journal"
)

// handleListEvents returns recent pipeline events, most recent first.
//
// Query parameters: limit, offset, request_id, stage, status.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeNotFound(w, "event journal is disabled")
		return
	}

	q := r.URL.Query()
	filter := journal.Filter{
		RequestID: q.Get("request_id"),
		Stage:     q.Get("stage"),
		Status:    q.Get("status"),
	}

	var ok bool
	if filter.Limit, ok = parseNonNegative(q.Get("limit")); !ok {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}
	if filter.Offset, ok = parseNonNegative(q.Get("offset")); !ok {
		writeBadRequest(w, "offset must be a non-negative integer")
		return
	}

	result, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing pipeline events failed",
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseNonNegative parses an optional query integer. Empty yields 0.
func parseNonNegative(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
