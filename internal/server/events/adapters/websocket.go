// Package adapters bridges broker events onto the WebSocket and SSE transports.
package adapters

import (
	"github.com/agentstation/peerreviews/internal/server/events"
	ws "github.com/agentstation/peerreviews/internal/server/websocket"
)

// WebSocketSubscriber forwards broker events to every WebSocket client.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a new WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send queues the event on the hub.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	return nil
}

// Close does nothing; the hub stops with the server context.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
