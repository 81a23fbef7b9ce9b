package service

import "context"

// Service is the trigger-facing facade over a Manager.
//
// The topicID argument is carried into logs only. There is one broker
// session per Service and the subscription always covers every request
// topic under the namespace.
type Service struct {
	manager *Manager
	logger  Logger
}

// New creates a Service over manager.
func New(manager *Manager, logger Logger) *Service {
	if logger == nil {
		logger = manager.logger
	}
	return &Service{manager: manager, logger: logger}
}

// Start starts the broker session. It returns an error wrapping
// ErrConnection when the broker cannot be reached.
func (s *Service) Start(ctx context.Context, topicID string) error {
	s.logger.Info("starting mqtt service", "topic_id", topicID)
	if err := s.manager.Start(ctx); err != nil {
		return err
	}
	s.logger.Info("mqtt service started", "topic_id", topicID)
	return nil
}

// Stop ends the broker session if one is running.
func (s *Service) Stop(ctx context.Context, topicID string) error {
	s.logger.Info("stopping mqtt service", "topic_id", topicID)
	if err := s.manager.Stop(ctx); err != nil {
		return err
	}
	s.logger.Info("mqtt service stopped", "topic_id", topicID)
	return nil
}

// State returns the underlying Manager's lifecycle state.
func (s *Service) State() State {
	return s.manager.State()
}
