// Package server manages individual WebSocket clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second

	// sendBufferSize bounds the per-client outbound queue; a client that
	// falls this far behind is dropped rather than stalling the room.
	sendBufferSize = 256
)

// Client represents one WebSocket connection in the relay. It carries the
// connection's session, its outbound queue, and an inbound rate limiter.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	hub     *Hub
	addr    string
	session Session
	log     *slog.Logger
	limiter *rate.Limiter
	closed  atomic.Bool
}

// NewClient creates a Client for an upgraded connection. The hub launches the
// pump goroutines once the client is registered.
func NewClient(conn *websocket.Conn, hub *Hub, addr string, cfg Config) *Client {
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	return &Client{
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		hub:     hub,
		addr:    addr,
		log:     hub.log,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
	}
}

func (c *Client) isOpen() bool {
	return !c.closed.Load()
}

func (c *Client) markClosed() {
	c.closed.Store(true)
}

// setupReadConnection configures the read deadline and pong handler.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("setting read deadline failed", "addr", c.addr, "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

// handleReadError classifies a read failure for logging. Every read error
// ends the pump; the distinction is only how loudly it is reported.
func (c *Client) handleReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("client exceeded max frame size", "addr", c.addr)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Info("client closed connection", "addr", c.addr)
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.log.Info("client connection closed", "addr", c.addr)
	default:
		c.log.Warn("websocket read error", "addr", c.addr, "error", err)
	}
}

// readPump consumes inbound frames one at a time, decodes them at the
// boundary, and forwards the decoded events to the hub's dispatch loop in
// arrival order.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("error closing connection", "addr", c.addr, "error", err)
		}
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		if !c.limiter.Allow() {
			c.log.Debug("rate limit exceeded, frame discarded", "addr", c.addr)
			continue
		}

		ev, err := decodeEvent(raw)
		if err != nil {
			// Malformed frames are dropped silently on the wire;
			// the decoder is the one place they get logged.
			c.log.Debug("malformed frame discarded", "addr", c.addr, "error", err)
			continue
		}

		select {
		case c.hub.inbound <- inboundEvent{sender: c, event: ev}:
		case <-c.hub.ctx.Done():
			return
		}
	}
}

// writePump drains the client's outbound queue onto the wire and keeps the
// connection alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Warn("error closing connection", "addr", c.addr, "error", err)
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.Warn("setting write deadline failed", "addr", c.addr, "error", err)
				return
			}
			if !ok {
				// Hub dropped the client.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Warn("websocket write error", "addr", c.addr, "error", err)
				}
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// isExpectedCloseError reports whether an error is routine connection
// teardown noise.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "websocket: close sent") ||
		strings.Contains(msg, "broken pipe")
}
