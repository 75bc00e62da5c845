package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/onboard/internal/app"
	"github.com/ternarybob/onboard/internal/common"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	// Setup routes
	s.router = s.setupRoutes()

	// A composed answer makes two model calls; a reindex request waits on the build
	writeTimeout := 2 * common.ParseDuration(application.Config.LLM.Timeout, 30*time.Second)
	if build := common.ParseDuration(application.Config.Corpus.BuildTimeout, 5*time.Minute); build > writeTimeout {
		writeTimeout = build
	}
	writeTimeout += 15 * time.Second

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler with the middleware chain applied
func (s *Server) Handler() http.Handler {
	return s.withConditionalMiddleware(s.router)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	s.app.Logger.Info().
		Str("chat", fmt.Sprintf("http://%s/api/chat", s.server.Addr)).
		Str("websocket", fmt.Sprintf("ws://%s/ws/chat", s.server.Addr)).
		Msg("Onboarding assistant available")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
