// Package server implements the relay's event dispatch: join, typing, and
// commit handling plus disconnect cleanup.
package server

// dispatch routes one decoded event from a connection to its handler. The
// variant set is closed, so every inbound event kind is handled here.
func (h *Hub) dispatch(c *Client, ev event) {
	switch ev := ev.(type) {
	case joinEvent:
		h.handleJoin(c, ev)
	case typingEvent:
		h.handleTyping(c, ev)
	case commitEvent:
		h.handleCommit(c, ev)
	case unknownEvent:
		h.log.Debug("unknown event type discarded", "type", ev.Type, "addr", c.addr)
	}
}

// handleJoin binds the connection to a room, replays the room's history to
// the joiner, and notifies the room of the new participant count. A join with
// no room, or a second join on the same connection, is dropped silently.
func (h *Hub) handleJoin(c *Client, ev joinEvent) {
	if ev.Room == "" {
		h.log.Debug("join without room discarded", "addr", c.addr)
		return
	}
	if c.session.Joined() {
		h.log.Debug("repeat join discarded", "addr", c.addr, "room", ev.Room)
		return
	}

	userID := ev.UserID
	if userID == "" {
		userID = h.ids.NewID()
	}
	c.session.bind(ev.Room, userID)

	h.registry.EnsureRoom(ev.Room)
	h.history.Ensure(ev.Room)
	h.registry.Join(ev.Room, c)
	h.log.Info("client joined room", "addr", c.addr, "room", ev.Room, "user", userID)

	// History goes to the joiner first, then everyone (joiner included)
	// learns the new participant count.
	h.sendFrame(c, newHistoryFrame(h.history.Snapshot(ev.Room)))
	h.broadcastParticipants(ev.Room)
}

// handleTyping relays transient draft text to every other open member of the
// sender's room. Nothing is stored.
func (h *Hub) handleTyping(c *Client, ev typingEvent) {
	if !c.session.Joined() {
		h.log.Debug("typing before join discarded", "addr", c.addr)
		return
	}

	frame := newPeerDraftFrame(c.session.UserID(), ev.Draft)
	h.broadcastFrame(c.session.RoomID(), frame, c)
}

// handleCommit finalizes the sender's draft into a Message, appends it to the
// room's history, and broadcasts it to the whole room, sender included.
func (h *Hub) handleCommit(c *Client, ev commitEvent) {
	if !c.session.Joined() {
		h.log.Debug("commit before join discarded", "addr", c.addr)
		return
	}

	roomID := c.session.RoomID()
	msg := Message{
		ID:   h.ids.NewID(),
		From: c.session.UserID(),
		Text: ev.Text,
		TS:   h.now().UnixMilli(),
	}
	h.history.Append(roomID, msg)
	h.broadcastFrame(roomID, newMessageFrame(msg), nil)
}

// handleLeave removes a disconnected client from its room. If the room
// emptied, both the member set and the history are discarded; otherwise the
// remaining members receive the updated participant count.
func (h *Hub) handleLeave(c *Client) {
	if !c.session.Joined() {
		return
	}

	roomID := c.session.RoomID()
	if emptied := h.registry.Leave(roomID, c); emptied {
		h.history.Drop(roomID)
		h.log.Info("room closed", "room", roomID)
		return
	}
	h.broadcastParticipants(roomID)
}
