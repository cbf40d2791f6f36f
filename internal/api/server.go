package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server represents the admin HTTP server.
type Server struct {
	httpServer   *http.Server
	hub          StatsPort
	links        LinkSourcePort
	statsDir     string
	staticDir    string
	startTime    time.Time
	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration
}

// NewServer creates a new admin server. statsDir holds the per-node router
// statistics files; staticDir holds rt.html.
func NewServer(hub StatsPort, links LinkSourcePort, statsDir, staticDir string) *Server {
	return &Server{
		hub:          hub,
		links:        links,
		statsDir:     statsDir,
		staticDir:    staticDir,
		startTime:    time.Now(),
		readTimeout:  30 * time.Second,
		writeTimeout: 30 * time.Second,
		idleTimeout:  120 * time.Second,
	}
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  s.idleTimeout,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start admin server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown admin server: %w", err)
	}
	return nil
}

// GetServer returns the underlying HTTP server for testing.
func (s *Server) GetServer() *http.Server {
	return s.httpServer
}
