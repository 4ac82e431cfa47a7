// Package serve provides the serve command: the HTTP API with the merged
// list, the ORCID feed, the OAuth callback and realtime change streams.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/server"
	"github.com/agentstation/peerreviews/internal/sources/local"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/logging"
)

// Settings carries configuration values the command needs beyond flags.
type Settings struct {
	ManualPath     string
	AllowedOrigins []string
}

// NewCommand creates the serve command.
func NewCommand(app application.Application, settings Settings) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the HTTP API with WebSocket and SSE updates",
		Long: `Start the peer-review HTTP API.

Endpoints (under --prefix, default /api):
  - GET  /peer-reviews                 merged entries, last updated and stats
  - GET  /peer-reviews/latest          live ORCID feed, fallback envelope on failure
  - GET|POST /oauth/orcid/callback     authorization code exchange
  - GET  /peer-reviews/updates/ws      entry changes over WebSocket
  - GET  /peer-reviews/updates/stream  entry changes as Server-Sent Events
  - GET  /health, /ready

With --watch the manual dataset is re-read whenever it changes on disk.`,
		Example: `  # Start on the default port 8080
  peerreviews serve

  # Restrict browser origins and watch the dataset
  peerreviews serve --cors-origins https://example.com --watch

  # Refresh the sources periodically
  PEER_REVIEWS_AUTO_UPDATE_INTERVAL=15m peerreviews serve --auto-update`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, app, settings)
		},
	}

	cmd.Flags().Int("port", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (default from PEER_REVIEWS_ALLOWED_ORIGINS, else any)")

	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "How long a successful ORCID feed is cached")

	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	cmd.Flags().Bool("watch", false, "Re-read the manual dataset when it changes")
	cmd.Flags().Bool("auto-update", false, "Refresh the sources on the configured interval (PEER_REVIEWS_AUTO_UPDATE_INTERVAL)")

	return cmd
}

// runServer starts the API server.
func runServer(cmd *cobra.Command, app application.Application, settings Settings) error {
	cfg, err := parseConfig(cmd, settings)
	if err != nil {
		return err
	}
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Strs("cors_origins", cfg.AllowedOrigins).
		Int("rate_limit", cfg.RateLimit).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting API server")

	client, err := app.Client()
	if err != nil {
		return err
	}

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Start()

	refresh := func() {
		changes, err := client.Update(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Refresh incomplete, serving last good data")
		}
		if changes != nil {
			srv.UpdateCompleted(changes)
		}
	}
	refresh()

	if mustGetBool(cmd, "auto-update") {
		if err := client.AutoUpdatesOn(); err != nil {
			return err
		}
	}

	if mustGetBool(cmd, "watch") && settings.ManualPath != "" {
		src := local.New(local.WithPath(settings.ManualPath))
		go func() {
			if err := src.Watch(ctx, refresh); err != nil {
				logger.Error().Err(err).Msg("Watching the manual dataset stopped")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           srv.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return startWithGracefulShutdown(cmd, httpServer, srv, logger)
}

// parseConfig parses command flags into server configuration.
func parseConfig(cmd *cobra.Command, settings Settings) (server.Config, error) {
	cfg := server.DefaultConfig()

	cfg.Port = mustGetInt(cmd, "port")
	cfg.Host = mustGetString(cmd, "host")
	cfg.PathPrefix = mustGetString(cmd, "prefix")
	cfg.RateLimit = mustGetInt(cmd, "rate-limit")
	cfg.CacheTTL = mustGetDuration(cmd, "cache-ttl")
	cfg.ReadTimeout = mustGetDuration(cmd, "read-timeout")
	cfg.WriteTimeout = mustGetDuration(cmd, "write-timeout")
	cfg.IdleTimeout = mustGetDuration(cmd, "idle-timeout")

	switch origins := mustGetStringSlice(cmd, "cors-origins"); {
	case len(origins) > 0:
		cfg.AllowedOrigins = origins
	case len(settings.AllowedOrigins) > 0:
		cfg.AllowedOrigins = settings.AllowedOrigins
	}

	// Environment overrides for container deployments
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
		p, err := parsePort(envPort)
		if err != nil {
			return cfg, err
		}
		cfg.Port = p
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" {
		cfg.Host = envHost
	}

	if _, err := parsePort(strconv.Itoa(cfg.Port)); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

// startWithGracefulShutdown serves until the command context is cancelled,
// then drains connections and stops the background services.
func startWithGracefulShutdown(cmd *cobra.Command, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		cmd.Printf("API server listening on %s\n", httpServer.Addr)
		cmd.Println("   Press Ctrl+C to stop")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		_ = srv.Shutdown(context.Background())
		return err
	case <-cmd.Context().Done():
		logger.Info().Msg("Shutdown signal received via context")
		cmd.Println("\nShutting down API server...")

		// The parent context is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		cmd.Println("API server stopped gracefully")
		return nil
	}
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}
