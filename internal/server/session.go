// Package server tracks per-connection session state: the room and user
// identity assigned by the first completed join.
package server

// Session associates a connection with a room and a user identifier. Both
// fields are unset at connection time and assigned exactly once by the first
// join processed on the connection; they never change afterwards.
type Session struct {
	roomID string
	userID string
	joined bool
}

// Joined reports whether the session completed a join.
func (s *Session) Joined() bool {
	return s.joined
}

// RoomID returns the assigned room, or "" before a join completes.
func (s *Session) RoomID() string {
	return s.roomID
}

// UserID returns the assigned user identifier, or "" before a join completes.
func (s *Session) UserID() string {
	return s.userID
}

// bind assigns the room and user identity. It returns false without mutating
// the session if a join already completed.
func (s *Session) bind(roomID, userID string) bool {
	if s.joined {
		return false
	}
	s.roomID = roomID
	s.userID = userID
	s.joined = true
	return true
}
