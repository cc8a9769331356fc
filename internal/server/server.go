package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/foodeasy/backend/config"
)

// Server represents the HTTP server
type Server struct {
	http *http.Server
	log  *zap.SugaredLogger
}

// New creates a server serving handler on the configured host and port.
func New(cfg *config.Config, handler http.Handler, log *zap.SugaredLogger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// generation waits on the planner, so writes get the planner budget
			WriteTimeout: cfg.PlannerTimeout + 30*time.Second,
			IdleTimeout:  2 * time.Minute,
		},
		log: log,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.log.Infow("starting HTTP server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Infow("shutting down HTTP server")
	return s.http.Shutdown(ctx)
}
