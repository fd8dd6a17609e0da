// Package events relays client events to the message broker, tagged with the
// request's correlation id.
package events

import "encoding/json"

// EventPayload is the body accepted by POST /api/v1/events.
type EventPayload struct {
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data"`
}

// RelayedEvent is the message published to the broker.
type RelayedEvent struct {
	EventType     string          `json:"eventType"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlationId"`
	ReceivedAt    string          `json:"receivedAt"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// EventResponse is the HTTP response for a relay request.
type EventResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	CorrelationID string `json:"correlationId"`
}

// Response status constants.
const (
	StatusQueued  = "queued"
	StatusSkipped = "skipped"
)

// Error codes specific to event relay.
const (
	CodeInvalidPayload = "invalid_payload"
)
