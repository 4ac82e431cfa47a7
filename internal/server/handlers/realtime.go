package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/peerreviews/internal/server/events"
	ws "github.com/agentstation/peerreviews/internal/server/websocket"
)

// HandleWebSocket handles WebSocket connections at {prefix}/peer-reviews/updates/ws.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)
	h.wsHub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.wsHub.Broadcast(ws.Message{
		Type:      string(events.ClientConnected),
		Timestamp: time.Now().UTC(),
		Data: map[string]any{
			"client_id": client.ID(),
		},
	})
}

// HandleSSE handles Server-Sent Events at {prefix}/peer-reviews/updates/stream.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
