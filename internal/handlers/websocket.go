package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/services/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocket message types
const (
	WSTypeSession = "session"
	WSTypeAnswer  = "answer"
	WSTypeError   = "error"
)

// WSMessage is one frame sent to a chat client
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WebSocketHandler serves /ws/chat: one chat session per connection, one
// answer frame per message frame
type WebSocketHandler struct {
	answerer     QueryAnswerer
	sessions     SessionProvider
	readLimit    int64
	writeTimeout time.Duration
	logger       arbor.ILogger
}

func NewWebSocketHandler(answerer QueryAnswerer, sessions SessionProvider, logger arbor.ILogger, config *common.WebSocketConfig) *WebSocketHandler {
	h := &WebSocketHandler{
		answerer:     answerer,
		sessions:     sessions,
		readLimit:    64 * 1024,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
	if config != nil {
		if config.ReadLimit > 0 {
			h.readLimit = config.ReadLimit
		}
		h.writeTimeout = common.ParseDuration(config.WriteTimeout, h.writeTimeout)
	}
	return h
}

// HandleWebSocket upgrades the connection and answers chat frames until the client leaves.
// A session_id query parameter resumes an existing session.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.readLimit)

	session := h.sessions.GetOrCreate(r.URL.Query().Get("session_id"))
	h.logger.Debug().Str("session_id", session.ID).Msg("WebSocket chat client connected")

	if err := h.send(conn, WSMessage{Type: WSTypeSession, Payload: map[string]string{"session_id": session.ID}}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Str("session_id", session.ID).Msg("WebSocket error")
			}
			break
		}

		var req ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if h.send(conn, WSMessage{Type: WSTypeError, Error: "invalid message: expected JSON"}) != nil {
				break
			}
			continue
		}
		if err := validate.Struct(&req); err != nil {
			if h.send(conn, WSMessage{Type: WSTypeError, Error: "message is required and must be under 4000 characters"}) != nil {
				break
			}
			continue
		}
		if req.BusinessRole != "" {
			session.SetBusinessRole(req.BusinessRole)
		}

		answer, err := h.answerer.HandleQuery(r.Context(), req.Message, session)
		if err != nil {
			if errors.Is(err, chat.ErrEmptyQuery) {
				if h.send(conn, WSMessage{Type: WSTypeError, Error: "message is required"}) != nil {
					break
				}
				continue
			}
			h.logger.Warn().Err(err).Str("session_id", session.ID).Msg("WebSocket query aborted")
			break
		}

		if err := h.send(conn, WSMessage{Type: WSTypeAnswer, Payload: answer}); err != nil {
			break
		}
	}

	h.logger.Debug().Str("session_id", session.ID).Msg("WebSocket chat client disconnected")
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg WSMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn().Err(err).Str("type", msg.Type).Msg("Failed to send WebSocket message")
		return err
	}
	return nil
}
