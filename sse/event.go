package sse

import (
	"encoding/json"
	"time"
)

// Event types.
const (
	// EventTypeConnected is written once when a stream opens.
	EventTypeConnected = "connected"

	EventRoomUpdate    = "room_update"
	EventPatientUpdate = "patient_update"
	EventTicketUpdate  = "ticket_update"
)

// ActionRefresh tells dashboards to refetch state.
const ActionRefresh = "refresh"

// Event is a notification that something changed for a tenant. It carries
// no authoritative state.
type Event struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewEvent stamps an event with t in UTC, RFC 3339 with nanoseconds.
func NewEvent(eventType string, payload any, t time.Time) Event {
	return Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: t.UTC().Format(time.RFC3339Nano),
	}
}

type wireMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

// Wire returns the JSON written to the stream: {"type":..,"action":"refresh"}.
func (e Event) Wire() []byte {
	data, _ := json.Marshal(wireMessage{Type: e.Type, Action: ActionRefresh})
	return data
}

// ConnectedEvent is sent when a client successfully connects.
type ConnectedEvent struct {
	ClientID string `json:"client_id"`
	Tenant   string `json:"tenant"`
}
