// Package server exposes the HTTP surface: the WebSocket upgrade endpoint, a
// health check, and a built-in test console.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler bundles the hub, configuration, and upgrader behind the HTTP
// endpoints. The hub is injected rather than held as package state so tests
// can run isolated instances side by side.
type Handler struct {
	hub      *Hub
	cfg      Config
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler wires a Handler to a running hub.
func NewHandler(hub *Hub, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	policy := newOriginPolicy(cfg.AllowedOrigins, logger)
	return &Handler{
		hub: hub,
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
	}
}

// ServeWS upgrades the HTTP connection and registers the resulting client
// with the hub, which launches its read/write pumps.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, h.hub, r.RemoteAddr, h.cfg)

	select {
	case h.hub.register <- client:
	case <-h.hub.ctx.Done():
		_ = conn.Close()
	}
}

// HealthHandler reports that the relay is up.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "Parlor relay is running!")
}

// TestPage serves a minimal browser console for exercising the relay: join a
// room, watch peer drafts live, commit messages with Enter.
func (h *Handler) TestPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPageHTML); err != nil {
		h.log.Warn("error writing test page", "error", err)
	}
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Parlor Test Console</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; max-width: 640px; }
        #log { border: 1px solid #ccc; height: 280px; padding: 10px; overflow-y: scroll; margin: 10px 0; background: #f9f9f9; }
        #drafts { color: #888; font-style: italic; min-height: 1.2em; }
        input[type="text"] { padding: 5px; margin-right: 6px; }
        #draft { width: 320px; }
        button { padding: 5px 15px; background: #007cba; color: white; border: none; cursor: pointer; }
        .peer { color: green; } .meta { color: gray; }
    </style>
</head>
<body>
    <h1>Parlor Test Console</h1>
    <div>
        <input type="text" id="room" placeholder="room" value="lobby">
        <input type="text" id="user" placeholder="user (optional)">
        <button id="joinBtn" onclick="join()">Join</button>
        <span id="participants"></span>
    </div>
    <div id="log"></div>
    <div id="drafts"></div>
    <div>
        <input type="text" id="draft" placeholder="Type a message, Enter to send" disabled>
    </div>

    <script>
        let ws = null;
        const log = document.getElementById('log');
        const drafts = document.getElementById('drafts');
        const draft = document.getElementById('draft');

        function addLine(text, cls) {
            const el = document.createElement('div');
            el.className = cls || 'meta';
            el.textContent = text;
            log.appendChild(el);
            log.scrollTop = log.scrollHeight;
        }

        function join() {
            if (ws) ws.close();
            ws = new WebSocket('ws://' + location.host + '/ws');
            ws.onopen = function() {
                ws.send(JSON.stringify({
                    type: 'join',
                    room: document.getElementById('room').value,
                    userId: document.getElementById('user').value || undefined
                }));
                draft.disabled = false;
                addLine('joined ' + document.getElementById('room').value);
            };
            ws.onmessage = function(e) {
                const frame = JSON.parse(e.data);
                switch (frame.type) {
                case 'history':
                    frame.history.forEach(m => addLine(m.from + ': ' + m.text, 'peer'));
                    break;
                case 'participants':
                    document.getElementById('participants').textContent = frame.count + ' online';
                    break;
                case 'peerDraft':
                    drafts.textContent = frame.draft ? frame.from + ' is typing: ' + frame.draft : '';
                    break;
                case 'message':
                    addLine(frame.message.from + ': ' + frame.message.text, 'peer');
                    break;
                }
            };
            ws.onclose = function() {
                draft.disabled = true;
                addLine('disconnected');
            };
        }

        draft.addEventListener('input', function() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({type: 'typing', draft: draft.value}));
            }
        });
        draft.addEventListener('keypress', function(e) {
            if (e.key === 'Enter' && ws && ws.readyState === WebSocket.OPEN) {
                // The committed message comes back on the broadcast path.
                ws.send(JSON.stringify({type: 'commit', text: draft.value}));
                draft.value = '';
                ws.send(JSON.stringify({type: 'typing', draft: ''}));
            }
        });
    </script>
</body>
</html>`
