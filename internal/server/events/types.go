// Package events fans peer-review changes out to the live update transports.
//
// Client hooks publish into a Broker, which forwards every event to each
// registered Subscriber (the WebSocket hub and the SSE broadcaster).
package events

import "time"

// EventType represents the type of feed event.
type EventType string

// Event types for feed changes.
const (
	// Entry events (from client hooks).
	EntryAdded   EventType = "entry.added"
	EntryUpdated EventType = "entry.updated"
	EntryRemoved EventType = "entry.removed"

	// Refresh events (from update runs).
	UpdateCompleted EventType = "update.completed"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event represents a feed event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
