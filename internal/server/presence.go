// Package server derives participant counts from the registry and pushes
// them to room members.
package server

// broadcastParticipants computes the room's open-connection count and sends a
// participants frame to every open member. Called after every join and every
// leave; bursts produce one notification per transition, no coalescing.
func (h *Hub) broadcastParticipants(roomID string) {
	count := h.registry.MemberCount(roomID)
	h.broadcastFrame(roomID, newParticipantsFrame(count), nil)
}
