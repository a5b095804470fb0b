package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionBindOnce(t *testing.T) {
	req := require.New(t)

	var s Session
	req.False(s.Joined())
	req.Empty(s.RoomID())
	req.Empty(s.UserID())

	req.True(s.bind("r1", "alice"))
	req.True(s.Joined())
	req.Equal("r1", s.RoomID())
	req.Equal("alice", s.UserID())

	// A second bind never rebinds the session.
	req.False(s.bind("r2", "bob"))
	req.Equal("r1", s.RoomID())
	req.Equal("alice", s.UserID())
}
