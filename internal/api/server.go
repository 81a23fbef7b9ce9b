package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/rules-engine/internal/infrastructure/config"
	"github.com/nerrad567/rules-engine/internal/infrastructure/logging"
	"github.com/nerrad567/rules-engine/internal/journal"
	"github.com/nerrad567/rules-engine/internal/service"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Lifecycle is the broker session control the trigger endpoints drive.
// *service.Service satisfies it.
type Lifecycle interface {
	Start(ctx context.Context, topicID string) error
	Stop(ctx context.Context, topicID string) error
	State() service.State
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Lifecycle Lifecycle
	Journal   journal.Repository // optional: nil disables /api/v1/events
	Version   string

	// Broker reports whether the broker session is open. Optional; it does
	// not affect the overall status because a stopped service is healthy.
	Broker HealthChecker

	// Checks are the required dependencies, keyed by the name reported in
	// the health response. Any failure marks the service degraded.
	Checks map[string]HealthChecker
}

// Server is the HTTP API server for the rules engine.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	lifecycle Lifecycle
	journal   journal.Repository
	version   string
	broker    HealthChecker
	checks    map[string]HealthChecker

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Lifecycle == nil {
		return nil, fmt.Errorf("lifecycle is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		lifecycle: deps.Lifecycle,
		journal:   deps.Journal,
		version:   deps.Version,
		broker:    deps.Broker,
		checks:    deps.Checks,
	}, nil
}

// Start binds the listener and serves requests in a background goroutine.
//
// Binding happens before Start returns so a port already in use is
// reported to the caller. The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}
	s.server = srv
	s.listener = ln

	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
