// Package logging provides structured logging for the rules engine.
//
// It wraps log/slog so every component emits entries with the same
// default fields (service, version) and honours the configured level.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("mqtt service started", "topic_id", id)
//	logger.Warn("failed to deserialize input data", "topic", topic)
//
// Request bodies and calculated amounts are never logged above debug level.
package logging
