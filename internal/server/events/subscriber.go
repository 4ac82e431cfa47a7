package events

// Subscriber receives events from the broker.
type Subscriber interface {
	// Send delivers an event. Implementations must not block for long.
	Send(Event) error

	// Close shuts the subscriber down.
	Close() error
}
