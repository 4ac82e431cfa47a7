package server

import (
	"net/http"
	"slices"

	"github.com/agentstation/peerreviews/internal/server/handlers"
	"github.com/agentstation/peerreviews/internal/server/middleware"
	"github.com/agentstation/peerreviews/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.app,
		s.cache,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
	)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	// 204 keeps browsers from logging 404s
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.Handle("/health", allow(h.HandleHealth, http.MethodGet))
	mux.Handle(prefix+"/health", allow(h.HandleHealth, http.MethodGet))
	mux.Handle(prefix+"/ready", allow(h.HandleReady, http.MethodGet))

	mux.Handle(prefix+"/peer-reviews", allow(h.HandlePeerReviews, http.MethodGet))
	mux.Handle(prefix+"/peer-reviews/latest", allow(h.HandleLatest, http.MethodGet))
	mux.Handle(prefix+"/oauth/orcid/callback", allow(h.HandleORCIDCallback, http.MethodGet, http.MethodPost))

	mux.Handle(prefix+"/peer-reviews/updates/ws", allow(h.HandleWebSocket, http.MethodGet))
	mux.Handle(prefix+"/peer-reviews/updates/stream", allow(h.HandleSSE, http.MethodGet))
}

// applyMiddleware wraps handler with the middleware chain. Recovery is the
// outermost layer so panics anywhere below are answered.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}

	cors := middleware.DefaultCORSConfig()
	if len(s.config.AllowedOrigins) > 0 {
		cors.AllowedOrigins = s.config.AllowedOrigins
	}
	chain = append(chain, middleware.CORS(cors))

	if s.rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(s.rateLimiter))
	}

	return middleware.Chain(chain...)(handler)
}

// allow answers 405 with an Allow header for methods outside allowed.
// OPTIONS is always listed since CORS preflight is answered upstream.
func allow(fn http.HandlerFunc, allowed ...string) http.Handler {
	listed := append(slices.Clone(allowed), http.MethodOptions)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(allowed, r.Method) {
			response.MethodNotAllowed(w, r.Method, listed...)
			return
		}
		fn(w, r)
	})
}
