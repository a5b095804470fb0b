// Package server decodes inbound wire frames into a closed set of event
// variants so the relay dispatch table stays exhaustiveness-checkable.
package server

import (
	"encoding/json"
	"errors"
)

// Message is a committed chat message as it appears in room history and on
// the wire. Messages are immutable once created and belong to exactly one
// room's history.
type Message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// envelope is the raw inbound frame shape. Field payloads stay raw so that a
// client sending the wrong JSON type for an optional field degrades to the
// empty value instead of poisoning the whole frame.
type envelope struct {
	Type   string          `json:"type"`
	Room   json.RawMessage `json:"room"`
	UserID json.RawMessage `json:"userId"`
	Draft  json.RawMessage `json:"draft"`
	Text   json.RawMessage `json:"text"`
}

// event is the closed set of inbound events the relay dispatches on.
type event interface {
	isEvent()
}

// joinEvent binds a connection to a room, optionally carrying a caller-chosen
// user identifier.
type joinEvent struct {
	Room   string
	UserID string
}

// typingEvent carries transient draft text relayed to peers without being
// stored.
type typingEvent struct {
	Draft string
}

// commitEvent finalizes the sender's draft into a permanent Message.
type commitEvent struct {
	Text string
}

// unknownEvent represents a well-formed frame whose type has no handler.
type unknownEvent struct {
	Type string
}

func (joinEvent) isEvent()    {}
func (typingEvent) isEvent()  {}
func (commitEvent) isEvent()  {}
func (unknownEvent) isEvent() {}

var errMissingType = errors.New("frame has no type field")

// decodeEvent parses one text frame into an event variant. A frame that is
// not a JSON object with a string type field is a decode error and the caller
// drops it; optional fields of the wrong JSON type are coerced to empty.
func decodeEvent(raw []byte) (event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, errMissingType
	}

	switch env.Type {
	case "join":
		return joinEvent{
			Room:   stringField(env.Room),
			UserID: stringField(env.UserID),
		}, nil
	case "typing":
		return typingEvent{Draft: stringField(env.Draft)}, nil
	case "commit":
		return commitEvent{Text: stringField(env.Text)}, nil
	default:
		return unknownEvent{Type: env.Type}, nil
	}
}

// stringField extracts a string from a raw JSON value, returning "" when the
// field is absent or not a string.
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Outbound frame shapes. Each is marshaled once per fan-out so every
// recipient receives identical bytes.

type historyFrame struct {
	Type    string    `json:"type"`
	History []Message `json:"history"`
}

type participantsFrame struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type peerDraftFrame struct {
	Type  string `json:"type"`
	From  string `json:"from"`
	Draft string `json:"draft"`
}

type messageFrame struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

func newHistoryFrame(history []Message) historyFrame {
	return historyFrame{Type: "history", History: history}
}

func newParticipantsFrame(count int) participantsFrame {
	return participantsFrame{Type: "participants", Count: count}
}

func newPeerDraftFrame(from, draft string) peerDraftFrame {
	return peerDraftFrame{Type: "peerDraft", From: from, Draft: draft}
}

func newMessageFrame(msg Message) messageFrame {
	return messageFrame{Type: "message", Message: msg}
}
