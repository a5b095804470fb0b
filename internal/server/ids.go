// Package server generates message and user identifiers behind a small
// interface so tests can inject deterministic values.
package server

import "github.com/google/uuid"

// idGenerator produces collision-resistant opaque identifiers for messages
// and for clients that join without supplying a userId.
type idGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}
