// Package sse streams feed events to clients as Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Broadcaster manages Server-Sent Events connections.
type Broadcaster struct {
	clients    map[chan Event]struct{}
	newClients chan chan Event
	closed     chan chan Event
	events     chan Event
	mu         sync.RWMutex
	logger     *zerolog.Logger
}

// NewBroadcaster creates a new SSE broadcaster.
func NewBroadcaster(logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients:    make(map[chan Event]struct{}),
		newClients: make(chan chan Event, 16),
		closed:     make(chan chan Event, 16),
		events:     make(chan Event, 256),
		logger:     logger,
	}
}

// Run processes connections and events until ctx is done, then ends every stream.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for client := range b.clients {
				close(client)
			}
			b.clients = make(map[chan Event]struct{})
			b.mu.Unlock()
			b.logger.Debug().Msg("SSE broadcaster shut down")
			return

		case client := <-b.newClients:
			b.mu.Lock()
			b.clients[client] = struct{}{}
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Info().Int("total_clients", count).Msg("SSE client connected")

		case client := <-b.closed:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client)
			}
			count := len(b.clients)
			b.mu.Unlock()
			b.logger.Info().Int("total_clients", count).Msg("SSE client disconnected")

		case event := <-b.events:
			b.mu.RLock()
			for client := range b.clients {
				select {
				case client <- event:
				default:
					b.logger.Warn().Msg("SSE client buffer full, event skipped")
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Broadcast sends an event to all connected SSE clients.
func (b *Broadcaster) Broadcast(event Event) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn().Msg("SSE broadcast channel full, event dropped")
	}
}

// ClientCount returns the number of connected SSE clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP streams events until the client goes away or the broadcaster stops.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := make(chan Event, 64)
	b.newClients <- client
	defer func() {
		b.closed <- client
	}()

	b.writeEvent(w, flusher, Event{
		Event: "connected",
		Data: map[string]any{
			"message":   "Connected to peer-review updates",
			"timestamp": time.Now().UTC(),
		},
	})

	for {
		select {
		case event, ok := <-client:
			if !ok {
				return
			}
			b.writeEvent(w, flusher, event)

		case <-r.Context().Done():
			return
		}
	}
}

func (b *Broadcaster) writeEvent(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to marshal SSE event data")
		return
	}
	if event.Event != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", event.Event)
	}
	if event.ID != "" {
		_, _ = fmt.Fprintf(w, "id: %s\n", event.ID)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// Event is one SSE frame.
type Event struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data"`
}
