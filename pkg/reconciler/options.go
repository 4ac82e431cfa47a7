package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/matcher"
)

// options configures a reconciler.
type options struct {
	strategy matcher.StrategyType
	merger   Merger
	logger   *zerolog.Logger
}

func defaultOptions() *options {
	nop := zerolog.Nop()
	return &options{
		strategy: matcher.StrategyLinearScan,
		merger:   MergerFunc(Merge),
		logger:   &nop,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithStrategy selects the identity matching strategy.
func WithStrategy(strategy matcher.StrategyType) Option {
	return func(o *options) error {
		parsed, err := matcher.ParseStrategy(strategy.String())
		if err != nil {
			return err
		}
		o.strategy = parsed
		return nil
	}
}

// WithMerger replaces the pair merge policy.
func WithMerger(m Merger) Option {
	return func(o *options) error {
		if m == nil {
			return &errors.ValidationError{Field: "merger", Message: "cannot be nil"}
		}
		o.merger = m
		return nil
	}
}

// WithLogger sets the logger for debug events about skipped records and matches.
// Reconcilers log nothing by default.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}
