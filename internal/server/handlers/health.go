package handlers

import (
	"net/http"

	"github.com/agentstation/peerreviews/internal/server/response"
)

// HandleHealth handles GET /health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "peerreviews",
		"version": h.app.Version(),
	})
}

// HandleReady handles GET {prefix}/ready. The server is ready once the
// peer-review client exists.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	client, err := h.app.Client()
	if err != nil || client == nil {
		response.ServiceUnavailable(w, "Peer-review client not available")
		return
	}

	response.OK(w, map[string]any{
		"status":  "ready",
		"entries": len(client.Entries()),
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
		"websocket_clients": h.wsHub.ClientCount(),
		"sse_clients":       h.sseBroadcaster.ClientCount(),
	})
}
