package models

import "encoding/json"

// Envelope is the wire frame for every channel message in both directions.
// Payload stays raw until the type is known; inbound payloads that fail to
// decode are dropped by the receiver, never fatal.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client → Server message types
const (
	MsgTypeLocationUpdate = "location:update"
)

// Server → Client message types
const (
	MsgTypeSessionInit = "session:init" // connection-scoped identity of the local user
	MsgTypeUsersUpdate = "users:update" // total roster snapshot, replaces prior state
)

// SessionInit carries the id the backend assigned to this connection.
type SessionInit struct {
	ID string `json:"id"`
}

// NewEnvelope marshals payload into a typed envelope. The payload types used
// on this wire cannot fail to marshal, so the error is swallowed.
func NewEnvelope(msgType string, payload any) Envelope {
	raw, _ := json.Marshal(payload)
	return Envelope{Type: msgType, Payload: raw}
}
