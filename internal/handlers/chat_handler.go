package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/services/chat"
)

// ChatRequest is the body of POST /api/chat and of WebSocket chat frames
type ChatRequest struct {
	SessionID    string `json:"session_id,omitempty" validate:"omitempty,max=100"`
	Message      string `json:"message" validate:"required,max=4000"`
	BusinessRole string `json:"business_role,omitempty" validate:"omitempty,max=100"`
}

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	answerer QueryAnswerer
	sessions SessionProvider
	logger   arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	answerer QueryAnswerer,
	sessions SessionProvider,
	logger arbor.ILogger,
) *ChatHandler {
	return &ChatHandler{
		answerer: answerer,
		sessions: sessions,
		logger:   logger,
	}
}

// ChatHandler handles POST /api/chat requests
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ChatRequest
	if err := DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug().Err(err).Msg("Rejected chat request")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := h.sessions.GetOrCreate(req.SessionID)
	if req.BusinessRole != "" {
		session.SetBusinessRole(req.BusinessRole)
	}

	h.logger.Debug().
		Str("session_id", session.ID).
		Int("message_length", len(req.Message)).
		Msg("Processing chat request")

	answer, err := h.answerer.HandleQuery(r.Context(), req.Message, session)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuery) {
			WriteError(w, http.StatusBadRequest, "Message field is required")
			return
		}
		h.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to answer chat request")
		WriteError(w, http.StatusServiceUnavailable, "The request was cancelled before an answer was ready")
		return
	}

	WriteJSON(w, http.StatusOK, answer)
}

// EndSessionHandler handles DELETE /api/chat/sessions/{id}
func (h *ChatHandler) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := pathID(r.URL.Path, "/api/chat/sessions/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	h.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}
