// Package server keeps the room membership bookkeeping for the relay via the
// Registry type.
package server

import (
	"sync"

	"github.com/samber/lo"
)

// Registry maps room keys to member sets. Rooms are created lazily on first
// join and removed when their member set empties. All mutation happens on the
// hub's dispatch goroutine; the mutex exists so read paths (member counts,
// snapshots, tests) are safe from any goroutine.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[*Client]struct{})}
}

// EnsureRoom creates an empty member set for the room if absent. Idempotent.
func (r *Registry) EnsureRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(map[*Client]struct{})
	}
}

// Join adds the client to the room's member set. The caller guarantees the
// client is not a member of any other room; the registry does not re-check.
func (r *Registry) Join(roomID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

// Leave removes the client from the room's member set. It is a no-op for an
// unknown room or a client that is not a member. It reports whether the room's
// member set became empty and was deleted.
func (r *Registry) Leave(roomID string, c *Client) (emptied bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, roomID)
		return true
	}
	return false
}

// Members returns a snapshot of the room's member set. Broadcast loops iterate
// the snapshot, never the live set, so a connection closing mid-broadcast
// cannot invalidate the iteration.
func (r *Registry) Members(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return lo.Keys(members)
}

// MemberCount returns the number of members whose transport is still open.
func (r *Registry) MemberCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return 0
	}
	return lo.CountBy(lo.Keys(members), func(c *Client) bool { return c.isOpen() })
}

// RoomCount returns the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
