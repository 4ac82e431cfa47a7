package peerreviews

import (
	"time"

	"github.com/agentstation/peerreviews/internal/sources/feed"
	"github.com/agentstation/peerreviews/internal/sources/local"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/differ"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/reconciler"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// options holds the client configuration.
type options struct {
	// sources holds the manual and remote sources under their role IDs.
	sources *sources.Sources

	autoUpdatesEnabled bool
	autoUpdateInterval time.Duration

	reconcilerOptions []reconciler.Option
	differOptions     []differ.Option
}

func defaults() *options {
	return &options{
		sources:            sources.NewSources(),
		autoUpdatesEnabled: false,
		autoUpdateInterval: constants.DefaultUpdateInterval,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithManualSource sets the source of the hand-maintained dataset. A source
// reporting another ID is registered as the manual one; nil clears it.
func WithManualSource(src sources.Source) Option {
	return func(o *options) error {
		o.register(sources.ManualID, src)
		return nil
	}
}

// WithRemoteSource sets the source of the remote feed.
func WithRemoteSource(src sources.Source) Option {
	return func(o *options) error {
		o.register(sources.RemoteID, src)
		return nil
	}
}

func (o *options) register(role sources.ID, src sources.Source) {
	switch {
	case src == nil:
		o.sources.Delete(role)
	case src.ID() != role:
		o.sources.Set(sources.Rename(role, src))
	default:
		o.sources.Set(src)
	}
}

// source returns the source registered for role, or nil.
func (o *options) source(role sources.ID) sources.Source {
	src, ok := o.sources.Get(role)
	if !ok {
		return nil
	}
	return src
}

// WithManualPath reads the manual dataset from a JSON or YAML file.
func WithManualPath(path string) Option {
	return func(o *options) error {
		if path == "" {
			return &errors.ValidationError{Field: "manualPath", Message: "cannot be empty"}
		}
		o.register(sources.ManualID, local.New(local.WithPath(path)))
		return nil
	}
}

// WithFeedURL reads the remote feed from url.
func WithFeedURL(url string) Option {
	return func(o *options) error {
		if url == "" {
			return &errors.ValidationError{Field: "feedURL", Message: "cannot be empty"}
		}
		o.register(sources.RemoteID, feed.New(url, nil))
		return nil
	}
}

// WithAutoUpdates configures whether automatic refresh is enabled.
func WithAutoUpdates(enabled bool) Option {
	return func(o *options) error {
		o.autoUpdatesEnabled = enabled
		return nil
	}
}

// WithAutoUpdateInterval configures how often to refresh automatically.
func WithAutoUpdateInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.autoUpdateInterval = interval
		return nil
	}
}

// WithReconcilerOptions passes options to the aggregation pipeline.
func WithReconcilerOptions(opts ...reconciler.Option) Option {
	return func(o *options) error {
		o.reconcilerOptions = append(o.reconcilerOptions, opts...)
		return nil
	}
}

// WithDifferOptions configures how Update computes the changeset passed to
// hooks and returned to the caller.
func WithDifferOptions(opts ...differ.Option) Option {
	return func(o *options) error {
		o.differOptions = append(o.differOptions, opts...)
		return nil
	}
}
