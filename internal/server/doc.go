// Package server implements the Parlor relay: a room-scoped WebSocket server
// that replays history to joiners, relays live typing drafts between peers,
// and broadcasts committed messages and participant counts.
//
// The implementation is organized into specialized files for the registry,
// history store, relay dispatch, presence, clients, configuration, and HTTP
// surface to keep the codebase maintainable and testable as the project
// grows.
package server
