// Package local loads the hand-maintained manual dataset from a JSON or YAML
// file and watches it for changes.
package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/logging"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Source reads the manual dataset from disk.
type Source struct {
	path     string
	debounce time.Duration
}

// Option configures a local source.
type Option func(*Source)

// WithPath sets the dataset path.
func WithPath(path string) Option {
	return func(s *Source) {
		s.path = path
	}
}

// WithDebounce sets how long Watch waits for a burst of events to settle.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		s.debounce = d
	}
}

// New creates a new local source. The path defaults to constants.DefaultManualPath.
func New(opts ...Option) *Source {
	s := &Source{path: constants.DefaultManualPath, debounce: constants.WatchDebounce}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns sources.ManualID.
func (s *Source) ID() sources.ID {
	return sources.ManualID
}

// Path returns the dataset path.
func (s *Source) Path() string {
	return s.path
}

// Fetch reads and decodes the dataset. A missing file is reported as a
// NotFoundError so callers can log it and continue with no manual entries.
func (s *Source) Fetch(ctx context.Context) (*sources.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("manual dataset", s.path)
		}
		return nil, errors.WrapIO("read", s.path, err)
	}

	payload, err := Decode(s.path, data)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().
		Str("path", s.path).
		Int("entries", payload.Len()).
		Msg("Loaded manual dataset")
	return payload, nil
}

// Decode parses dataset bytes, choosing YAML or JSON by file extension.
func Decode(path string, data []byte) (*sources.Payload, error) {
	if IsYAML(path) {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
		data = converted
	}

	payload, err := sources.Decode(data)
	var parseErr *errors.ParseError
	if errors.As(err, &parseErr) {
		parseErr.File = path
	}
	return payload, err
}

// IsYAML reports whether path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Watch calls onChange after the dataset is written, created or replaced,
// until ctx is done. The parent directory is watched so that editors that
// save by renaming a temporary file are seen too.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapIO("watch", s.path, err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return errors.WrapIO("watch", dir, err)
	}

	logger := logging.FromContext(ctx).With().Str("path", s.path).Logger()
	logger.Debug().Msg("Watching manual dataset")

	target := filepath.Clean(s.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !relevant(event.Op) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			logger.Info().Msg("Manual dataset changed")
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
