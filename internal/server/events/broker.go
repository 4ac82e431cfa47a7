package events

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/peerreviews/pkg/constants"
)

// Broker distributes events to subscribers.
type Broker struct {
	subscribers []Subscriber
	events      chan Event
	register    chan Subscriber
	unregister  chan Subscriber
	mu          sync.RWMutex
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewBroker creates a new event broker. Registration channels are buffered
// so that subscribers can be added before Run starts.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		events:     make(chan Event, constants.ChannelBufferSize),
		register:   make(chan Subscriber, 16),
		unregister: make(chan Subscriber, 16),
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes registrations and events until ctx is done, then closes
// every subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for _, sub := range b.subscribers {
				_ = sub.Close()
			}
			b.subscribers = nil
			b.mu.Unlock()
			b.logger.Debug().Msg("Event broker shut down")
			return

		case sub := <-b.register:
			b.mu.Lock()
			b.subscribers = append(b.subscribers, sub)
			count := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", count).Msg("Subscriber registered")

		case sub := <-b.unregister:
			b.mu.Lock()
			if i := slices.Index(b.subscribers, sub); i >= 0 {
				b.subscribers = slices.Delete(b.subscribers, i, i+1)
				_ = sub.Close()
			}
			count := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", count).Msg("Subscriber unregistered")

		case event := <-b.events:
			b.mu.RLock()
			subs := slices.Clone(b.subscribers)
			b.mu.RUnlock()

			for _, sub := range subs {
				if err := sub.Send(event); err != nil {
					b.logger.Warn().
						Err(err).
						Str("event_type", string(event.Type)).
						Msg("Failed to send event to subscriber")
				}
			}
		}
	}
}

// Publish queues an event. When the queue is full the event is dropped.
func (b *Broker) Publish(eventType EventType, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: b.now(),
		Data:      data,
	}

	select {
	case b.events <- event:
	default:
		b.logger.Warn().
			Str("event_type", string(eventType)).
			Msg("Event channel full, event dropped")
	}
}

// Subscribe registers a subscriber.
func (b *Broker) Subscribe(sub Subscriber) {
	b.register <- sub
}

// Unsubscribe removes and closes a subscriber.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.unregister <- sub
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
