/*
Package chat contains the event relay: the hub dispatcher, per-connection
client pumps, the wire events, and message construction.

Every frame on the wire is a JSON Envelope carrying one event from the
closed EventKind set with a per-kind payload.
*/
package chat

import (
	"encoding/json"

	"chatrelay/internal/app/user"
)

// EventKind identifies a wire event. The set is closed: unknown kinds are
// logged and dropped, never dispatched.
type EventKind string

// Inbound events (client to server).
const (
	EventJoin       EventKind = "Join"
	EventMessage    EventKind = "Message"
	EventDisconnect EventKind = "Disconnect"
	EventValidate   EventKind = "Validate"
)

// Outbound events (server to clients). EventMessage is shared: the server
// broadcasts chat and system text under the same kind clients send with.
const (
	EventRoomData    EventKind = "RoomData"
	EventJoinAck     EventKind = "JoinAck"
	EventMessageAck  EventKind = "MessageAck"
	EventValidateAck EventKind = "ValidateAck"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event   EventKind       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload and wraps it in a frame of the given kind.
func NewEnvelope(kind EventKind, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Event: kind, Payload: body})
}

// decode unmarshals an envelope payload into its typed form. A missing
// payload fails the same way a malformed one does.
func decode[T any](payload []byte) (T, error) {
	var v T
	err := json.Unmarshal(payload, &v)
	return v, err
}

// JoinPayload is the Join event body.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// MessagePayload is the Message event body. ID is the sender's connection
// id as returned by the JoinAck.
type MessagePayload struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// IDPayload is the body of the Disconnect and Validate events, which carry
// only a connection id.
type IDPayload struct {
	ID string `json:"id"`
}

// JoinAck acknowledges a Join. On success ID is set and Error empty; on
// failure ID is empty and Error holds the reason. The connection stays
// open either way.
type JoinAck struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// MessageAck acknowledges a Message event.
type MessageAck struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ValidateAck acknowledges a Validate event. User is present only when
// IsValid is true.
type ValidateAck struct {
	IsValid bool       `json:"isValid"`
	User    *user.User `json:"user,omitempty"`
}

// RoomData is the roster snapshot broadcast to a room whenever its
// membership changes.
type RoomData struct {
	Room  string      `json:"room"`
	Users []user.User `json:"users"`
}
