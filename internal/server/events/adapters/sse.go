package adapters

import (
	"github.com/google/uuid"

	"github.com/agentstation/peerreviews/internal/server/events"
	"github.com/agentstation/peerreviews/internal/server/sse"
)

// SSESubscriber forwards broker events to every SSE stream.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates a new SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send queues the event on the broadcaster. Each frame gets a unique id so
// browsers can resume with Last-Event-ID.
func (s *SSESubscriber) Send(event events.Event) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(event.Type),
		ID:    uuid.NewString(),
		Data: map[string]any{
			"timestamp": event.Timestamp,
			"data":      event.Data,
		},
	})
	return nil
}

// Close does nothing; the broadcaster stops with the server context.
func (s *SSESubscriber) Close() error {
	return nil
}
