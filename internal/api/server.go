// Package api provides the HTTP JSON API and WebSocket server for the
// Outpost panel.
//
// It exposes session management, output reads and writes, power-up
// configuration, the operational message log, and a WebSocket event
// stream to panel clients.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/outpost/internal/control"
	"github.com/nerrad567/outpost/internal/hardware"
	"github.com/nerrad567/outpost/internal/infrastructure/config"
	"github.com/nerrad567/outpost/internal/infrastructure/database"
	"github.com/nerrad567/outpost/internal/infrastructure/logging"
	"github.com/nerrad567/outpost/internal/msglog"
	"github.com/nerrad567/outpost/internal/session"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// sessionCookieName is the cookie carrying the raw session token.
const sessionCookieName = "outpost_session"

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Session  config.SessionConfig
	Panel    config.PanelConfig
	Logger   *logging.Logger
	Resolver *control.Resolver
	Sessions *session.Coordinator
	Messages msglog.Log
	Hardware hardware.Driver
	DB       *database.DB
	Hub      *Hub // If set, the server uses this hub instead of creating its own
	Version  string
}

// Server is the HTTP API server for the Outpost panel.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	sessCfg  config.SessionConfig
	panelCfg config.PanelConfig
	logger   *logging.Logger
	resolver *control.Resolver
	sessions *session.Coordinator
	messages msglog.Log
	hw       hardware.Driver
	db       *database.DB
	version  string
	server   *http.Server
	hub      *Hub
	cancel   context.CancelFunc // cancels background goroutines on Close()
	started  time.Time
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("output resolver is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session coordinator is required")
	}
	if deps.Messages == nil {
		return nil, fmt.Errorf("message log is required")
	}

	s := &Server{
		cfg:      deps.Config,
		sessCfg:  deps.Session,
		panelCfg: deps.Panel,
		logger:   deps.Logger,
		resolver: deps.Resolver,
		sessions: deps.Sessions,
		messages: deps.Messages,
		hw:       deps.Hardware,
		db:       deps.DB,
		hub:      deps.Hub,
		version:  deps.Version,
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, and launches the
// HTTP listener in a background goroutine. The server can be stopped
// with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.logger)
	}
	go s.hub.Run(srvCtx)

	s.started = time.Now().UTC()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Hub returns the WebSocket hub for event fan-out wiring.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
