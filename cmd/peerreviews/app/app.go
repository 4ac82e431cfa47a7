// Package app provides the application context and dependency management
// for the peerreviews CLI. It centralizes configuration, logging and the
// lazily created peer-review client and ORCID registry client.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/peerreviews"
	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/sources/orcid"
	"github.com/agentstation/peerreviews/internal/transport"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the peerreviews application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazy-initialized singletons
	mu       sync.RWMutex
	client   peerreviews.Client
	registry *orcid.Client
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment that can
// be customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the peer-review client, creating it on first use.
func (a *App) Client() (peerreviews.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	c, err := peerreviews.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.client = c
	return c, nil
}

// Registry returns the ORCID registry client, creating it on first use.
// Missing credentials are reported when the registry is called, so the
// HTTP API can answer with its configuration error bodies.
func (a *App) Registry() (application.Registry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.registry == nil {
		limiter := transport.NewRateLimiter(constants.UpstreamRatePerSecond, constants.UpstreamBurst)
		a.registry = orcid.New(a.config.ORCID, orcid.WithRateLimiter(limiter))
	}
	return a.registry, nil
}

// Shutdown stops background refreshes.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	c := a.client
	a.mu.RUnlock()

	if c != nil {
		if err := c.AutoUpdatesOff(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop auto-updates during shutdown")
		}
	}
	return nil
}

// clientOptions builds client options from the configuration.
func (a *App) clientOptions() []peerreviews.Option {
	var opts []peerreviews.Option

	if a.config.ManualPath != "" {
		opts = append(opts, peerreviews.WithManualPath(a.config.ManualPath))
	}
	if a.config.FeedURL != "" {
		opts = append(opts, peerreviews.WithFeedURL(a.config.FeedURL))
	}
	opts = append(opts,
		peerreviews.WithAutoUpdates(a.config.AutoUpdatesEnabled),
		peerreviews.WithAutoUpdateInterval(a.config.AutoUpdateInterval),
	)

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom peer-review client (useful for testing).
func WithClient(c peerreviews.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
