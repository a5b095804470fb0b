// Package server stores per-room message history for replay to late joiners.
package server

import "sync"

// HistoryStore keeps an append-only, unbounded message log per room. History
// lives exactly as long as the room: the hub drops a room's log the moment its
// last member leaves.
type HistoryStore struct {
	mu   sync.RWMutex
	logs map[string][]Message
}

// NewHistoryStore returns an empty HistoryStore.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{logs: make(map[string][]Message)}
}

// Ensure creates an empty log for the room if absent. Idempotent.
func (s *HistoryStore) Ensure(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[roomID]; !ok {
		s.logs[roomID] = []Message{}
	}
}

// Append adds a message to the end of the room's log. The relay guarantees
// the room exists before any message operation by requiring a completed join.
func (s *HistoryStore) Append(roomID string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[roomID] = append(s.logs[roomID], msg)
}

// Snapshot returns a copy of the room's log in commit order. The copy is safe
// for the caller to hold across later appends. A room with no history yields
// an empty, non-nil slice so it encodes as [] on the wire.
func (s *HistoryStore) Snapshot(roomID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[roomID]
	out := make([]Message, len(log))
	copy(out, log)
	return out
}

// Drop discards the room's log. Called when the room's member set empties;
// late joiners start from an empty history.
func (s *HistoryStore) Drop(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.logs, roomID)
}

// Len returns the number of messages in the room's log.
func (s *HistoryStore) Len(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.logs[roomID])
}
