// Package server provides the HTTP API for the peer-review feed: the merged
// list, the live ORCID envelope, the ORCID OAuth callback and realtime
// change notifications over WebSocket and SSE.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/server/cache"
	"github.com/agentstation/peerreviews/internal/server/events"
	"github.com/agentstation/peerreviews/internal/server/events/adapters"
	"github.com/agentstation/peerreviews/internal/server/middleware"
	"github.com/agentstation/peerreviews/internal/server/sse"
	ws "github.com/agentstation/peerreviews/internal/server/websocket"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/differ"
	"github.com/agentstation/peerreviews/pkg/entries"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	app            application.Application
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	startTime      time.Time
}

// New creates a server and connects the client's change hooks to the
// realtime transports.
func New(app application.Application, cfg Config) (*Server, error) {
	logger := app.Logger()

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = constants.CacheTTL
	}

	broker := events.NewBroker(logger)
	wsHub := ws.NewHub(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewWebSocketSubscriber(wsHub))
	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		app:            app,
		cache:          cache.New(cfg.CacheTTL, constants.CacheCleanupInterval),
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		logger:    logger,
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	if err := s.connectHooks(); err != nil {
		cancel()
		return nil, err
	}

	logger.Debug().Msg("Server instance created")
	return s, nil
}

// connectHooks publishes client changes to the broker.
func (s *Server) connectHooks() error {
	client, err := s.app.Client()
	if err != nil {
		return err
	}

	client.OnEntryAdded(func(entry entries.Entry) {
		s.broker.Publish(events.EntryAdded, map[string]any{
			"entry": entry,
		})
	})

	client.OnEntryUpdated(func(old, updated entries.Entry) {
		s.broker.Publish(events.EntryUpdated, map[string]any{
			"old_entry": old,
			"new_entry": updated,
		})
	})

	client.OnEntryRemoved(func(entry entries.Entry) {
		s.broker.Publish(events.EntryRemoved, map[string]any{
			"entry": entry,
		})
	})

	s.logger.Debug().Msg("Client hooks connected to event broker")
	return nil
}

// UpdateCompleted announces a finished refresh to realtime clients and drops
// cached upstream responses.
func (s *Server) UpdateCompleted(changes *differ.Changeset) {
	s.cache.Clear()
	if changes == nil {
		return
	}
	s.broker.Publish(events.UpdateCompleted, map[string]any{
		"added":   len(changes.Added),
		"updated": len(changes.Updated),
		"removed": len(changes.Removed),
	})
}

// Start starts background services (broker, WebSocket hub, SSE broadcaster
// and rate limiter cleanup).
func (s *Server) Start() {
	run := func(fn func(context.Context)) {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			fn(s.ctx)
		}()
	}

	run(s.broker.Run)
	run(s.wsHub.Run)
	run(s.sseBroadcaster.Run)
	if s.rateLimiter != nil {
		run(func(ctx context.Context) {
			s.rateLimiter.Run(ctx, 5*time.Minute)
		})
	}

	s.logger.Debug().Msg("Background services started")
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background services, waiting at most until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Background services shut down")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Cache returns the server's cache instance.
func (s *Server) Cache() *cache.Cache {
	return s.cache
}

// Broker returns the event broker for publishing events.
func (s *Server) Broker() *events.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}

// originChecker lets WebSocket upgrades through for the configured origins.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
