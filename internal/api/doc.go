// Package api implements the HTTP trigger surface for the rules engine.
//
// Routes:
//   - GET /api/mqtt/start/{topicId} starts the broker session
//   - GET /api/mqtt/stop/{topicId} stops it; stopping an idle service succeeds
//   - GET /api/v1/health reports the connection state and dependency checks;
//     a failed dependency answers 503 with status "degraded"
//   - GET /api/v1/events lists recent pipeline outcomes from the journal
//
// The topicId path segment is recorded in logs only. There is a single
// broker session and its subscription always covers every request topic.
//
// # Errors
//
// Failures use the structured body {"status","code","message"}. A broker
// that cannot be reached on start yields 502 with code "bad_gateway".
// The events route yields 404 "not_found" when the journal is disabled.
package api
