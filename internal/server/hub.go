// Package server coordinates client registration, event dispatch, and
// connection cleanup for the Parlor relay via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// inboundEvent pairs a decoded event with the connection it arrived on.
type inboundEvent struct {
	sender *Client
	event  event
}

// Hub owns the connection registry and room history and runs the relay's
// single dispatch goroutine. Every inbound event, registration, and
// disconnect funnels through Run, so state mutation and fan-out for one event
// always complete before the next event is handled. Events from one
// connection are forwarded in arrival order, which preserves per-sender
// delivery order to all peers.
type Hub struct {
	registry *Registry
	history  *HistoryStore
	ids      idGenerator
	log      *slog.Logger
	now      func() time.Time

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a Hub ready to manage connections. Call Run in a separate
// goroutine before registering clients.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:   NewRegistry(),
		history:    NewHistoryStore(),
		ids:        uuidGenerator{},
		log:        logger,
		now:        time.Now,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Registry exposes the hub's connection registry for read paths.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run is the hub's dispatch loop. It runs until Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("nil client registration skipped")
				continue
			}
			h.clients[client] = struct{}{}
			h.log.Info("client connected", "addr", client.addr, "clients", len(h.clients))

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.drop(client)

		case in := <-h.inbound:
			h.dispatch(in.sender, in.event)
		}
	}
}

// drop removes a client from the hub and its room, notifying the room's
// remaining members. Safe to call more than once per client; only the first
// call has any effect, so close is observed exactly once.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.markClosed()
	close(c.send)
	h.log.Info("client disconnected", "addr", c.addr, "clients", len(h.clients))

	h.handleLeave(c)
}

// safeSend queues a payload on a client's outbound channel without blocking.
// A closed or saturated recipient is reported as a failed delivery.
func (h *Hub) safeSend(c *Client, payload []byte) bool {
	if _, ok := h.clients[c]; !ok || !c.isOpen() {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// broadcastRoom sends a payload to every open member of a room except the
// excluded connection. It iterates a snapshot of the member set, then drops
// any member whose send buffer was full.
func (h *Hub) broadcastRoom(roomID string, payload []byte, exclude *Client) {
	members := h.registry.Members(roomID)

	var failed []*Client
	for _, m := range members {
		if m == exclude || !m.isOpen() {
			continue
		}
		if !h.safeSend(m, payload) {
			failed = append(failed, m)
		}
	}

	for _, m := range failed {
		h.log.Warn("dropping slow client", "addr", m.addr, "room", roomID)
		h.drop(m)
	}
}

// sendFrame marshals a frame and queues it for a single recipient.
func (h *Hub) sendFrame(c *Client, frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("frame marshal failed", "error", err)
		return
	}
	if !h.safeSend(c, payload) {
		h.log.Debug("delivery skipped", "addr", c.addr)
	}
}

// broadcastFrame marshals a frame once and fans it out to a room.
func (h *Hub) broadcastFrame(roomID string, frame any, exclude *Client) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("frame marshal failed", "error", err)
		return
	}
	h.broadcastRoom(roomID, payload, exclude)
}

// closeAllClients closes every live connection during shutdown. The pumps
// observe the closed sockets and wind down on their own.
func (h *Hub) closeAllClients() {
	h.log.Info("closing client connections", "count", len(h.clients))

	for c := range h.clients {
		c.markClosed()
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Warn("error closing client connection", "addr", c.addr, "error", err)
			}
		}
	}
}

// Shutdown stops the dispatch loop, closes all connections, and waits for
// the pump goroutines to finish or the timeout to elapse.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("hub shutting down")

	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("hub shutdown complete")
		return nil
	case <-time.After(timeout):
		h.log.Warn("hub shutdown timed out")
		return context.DeadlineExceeded
	}
}
