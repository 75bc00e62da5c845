package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/services/chat"
)

type wsFrame struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
	Error   string                 `json:"error"`
}

func dialChat(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocketHandler_Chat(t *testing.T) {
	answerer := &fakeAnswerer{}
	sessions := chat.NewSessionStore(3, 0, arbor.NewLogger())
	handler := NewWebSocketHandler(answerer, sessions, arbor.NewLogger(), &common.WebSocketConfig{ReadLimit: 8192, WriteTimeout: "2s"})

	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	defer server.Close()

	conn := dialChat(t, server, "")

	hello := readFrame(t, conn)
	require.Equal(t, WSTypeSession, hello.Type)
	sessionID, _ := hello.Payload["session_id"].(string)
	require.NotEmpty(t, sessionID)

	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "how many leave days", BusinessRole: "Engineer"}))
	answer := readFrame(t, conn)
	require.Equal(t, WSTypeAnswer, answer.Type)
	assert.Equal(t, "answer to how many leave days", answer.Payload["answer"])
	assert.Equal(t, sessionID, answer.Payload["session_id"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, WSTypeError, readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"business_role": "Engineer"}))
	assert.Equal(t, WSTypeError, readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "  "}))
	assert.Equal(t, WSTypeError, readFrame(t, conn).Type)

	// The connection keeps working after rejected frames
	require.NoError(t, conn.WriteJSON(ChatRequest{Message: "vpn"}))
	assert.Equal(t, WSTypeAnswer, readFrame(t, conn).Type)

	session, ok := sessions.Get(sessionID)
	require.True(t, ok)
	assert.Equal(t, "Engineer", session.BusinessRole())
}

func TestWebSocketHandler_ResumesSession(t *testing.T) {
	sessions := chat.NewSessionStore(3, 0, arbor.NewLogger())
	existing := sessions.GetOrCreate("sess_existing")
	handler := NewWebSocketHandler(&fakeAnswerer{}, sessions, arbor.NewLogger(), nil)

	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	defer server.Close()

	conn := dialChat(t, server, "?session_id="+existing.ID)
	hello := readFrame(t, conn)
	assert.Equal(t, existing.ID, hello.Payload["session_id"])
	assert.Equal(t, 1, sessions.Len())
}
