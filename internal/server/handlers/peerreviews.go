package handlers

import (
	"context"
	"net/http"

	"github.com/agentstation/peerreviews/internal/server/response"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/logging"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// latestCacheKey is the cache slot for the ORCID feed envelope.
const latestCacheKey = "peer-reviews:latest"

// HandlePeerReviews handles GET {prefix}/peer-reviews and returns the merged
// list as {entries, lastUpdated, stats}.
func (h *Handlers) HandlePeerReviews(w http.ResponseWriter, _ *http.Request) {
	client, err := h.app.Client()
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	response.Raw(w, http.StatusOK, client.Snapshot())
}

// HandleLatest handles GET {prefix}/peer-reviews/latest and returns the ORCID
// feed envelope. Successful envelopes are cached; fallback envelopes are not,
// so the next request retries upstream.
func (h *Handlers) HandleLatest(w http.ResponseWriter, r *http.Request) {
	registry, err := h.app.Registry()
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	ctx := r.Context()
	payload, _ := h.cache.GetOrLoad(latestCacheKey,
		func() (any, error) {
			// Concurrent requests share this load; one of them going away
			// must not cancel it for the rest.
			loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
			defer cancel()
			return registry.Latest(loadCtx), nil
		},
		func(v any) bool {
			p, ok := v.(*sources.Payload)
			return ok && !isFallback(p)
		},
	)

	p, _ := payload.(*sources.Payload)
	if p == nil {
		p = sources.Empty()
	}
	if isFallback(p) {
		logging.FromContext(ctx).Warn().Str("error", p.Meta.Error).Msg("Serving fallback peer-review feed")
	}

	w.Header().Set("Cache-Control", "no-store")
	response.Raw(w, http.StatusOK, p)
}

func isFallback(p *sources.Payload) bool {
	return p != nil && p.Meta != nil && p.Meta.Error != ""
}
