package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket chat (one session per connection)
	mux.HandleFunc("/ws/chat", s.app.WSHandler.HandleWebSocket)

	// API routes - Chat
	mux.HandleFunc("/api/chat", methods(MethodRouter{
		http.MethodPost: s.app.ChatHandler.ChatHandler,
	}))
	mux.HandleFunc("/api/chat/sessions/", methods(MethodRouter{
		http.MethodDelete: s.app.ChatHandler.EndSessionHandler,
	}))

	// API routes - Documents
	mux.HandleFunc("/api/documents", methods(MethodRouter{
		http.MethodGet: s.app.DocumentHandler.ListHandler,
	}))
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.DocumentRoutes) // GET /{id}, POST /reindex

	// API routes - Interaction log
	mux.HandleFunc("/api/interactions", methods(MethodRouter{
		http.MethodGet: s.app.InteractionHandler.ListHandler,
	}))

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for everything else
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
