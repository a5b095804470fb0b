// Package testhelpers provides shared utilities for exercising a live Parlor
// relay over real WebSocket connections in integration tests.
package testhelpers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parlorchat/parlor/internal/server"
)

// RelayServer bundles a running relay with its hub for test control.
type RelayServer struct {
	HTTP *httptest.Server
	Hub  *server.Hub
}

// WSURL returns the ws:// URL of the relay's WebSocket endpoint.
func (s *RelayServer) WSURL() string {
	return "ws" + strings.TrimPrefix(s.HTTP.URL, "http") + "/ws"
}

// StartRelay spins up a complete relay on an ephemeral port. The hub and
// server are torn down via t.Cleanup.
func StartRelay(t *testing.T, customize func(cfg *server.Config)) *RelayServer {
	t.Helper()

	cfg := server.DefaultConfig()
	cfg.AllowedOrigins = []string{"*"}
	if customize != nil {
		customize(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := server.NewHub(logger)
	go hub.Run()

	handler := server.NewHandler(hub, cfg, logger)
	ts := httptest.NewServer(server.NewRouter(handler))

	t.Cleanup(func() {
		ts.Close()
		_ = hub.Shutdown(2 * time.Second)
	})

	return &RelayServer{HTTP: ts, Hub: hub}
}

// Dial opens a WebSocket connection to the relay with a test origin header.
func Dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", "http://localhost:8080")

	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// SendEvent marshals and writes one event frame.
func SendEvent(t *testing.T, conn *websocket.Conn, event map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(event); err != nil {
		t.Fatalf("Failed to send event: %v", err)
	}
}

// SendRaw writes a raw text frame, bypassing JSON encoding.
func SendRaw(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("Failed to send raw frame: %v", err)
	}
}

// ReadFrame reads one frame within the timeout and decodes it.
func ReadFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) map[string]any {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}

	var frame map[string]any
	if err := json.Unmarshal(payload, &frame); err != nil {
		t.Fatalf("Failed to decode frame %q: %v", payload, err)
	}
	return frame
}

// ExpectFrame reads one frame and asserts its type field.
func ExpectFrame(t *testing.T, conn *websocket.Conn, frameType string) map[string]any {
	t.Helper()

	frame := ReadFrame(t, conn, 2*time.Second)
	if frame["type"] != frameType {
		t.Fatalf("Expected frame type %q, got %v", frameType, frame)
	}
	return frame
}

// ExpectNoFrame asserts that no frame arrives within the timeout.
func ExpectNoFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	_, payload, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("Expected no frame, but received %q", payload)
	}
	if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}
	t.Fatalf("Unexpected error while waiting for absence of frame: %v", err)
}

// Join sends a join event and consumes the history and participants frames
// every joiner receives, returning the history frame.
func Join(t *testing.T, conn *websocket.Conn, room, userID string) map[string]any {
	t.Helper()

	event := map[string]any{"type": "join", "room": room}
	if userID != "" {
		event["userId"] = userID
	}
	SendEvent(t, conn, event)

	history := ExpectFrame(t, conn, "history")
	ExpectFrame(t, conn, "participants")
	return history
}

// CloseWebSocket performs a normal closure handshake.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
