package ports

import "context"

// Message is the wire envelope sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Delivery is the outbound side of a transport. Implementations only know
// participant ids; connection lifecycles stay inside the transport.
type Delivery interface {
	// SendTo delivers msg to one participant of a session. Participants without
	// a live connection are skipped without error.
	SendTo(ctx context.Context, sessionCode, participantID string, msg Message) error

	// Broadcast delivers msg to every connected participant of a session,
	// except excludeID when it is non-empty.
	Broadcast(ctx context.Context, sessionCode string, msg Message, excludeID string) error
}
