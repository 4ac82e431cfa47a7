// Package peerreviews provides the main entry point for the peer-review feed.
// It keeps the merged list of manual and remote peer-review entries current,
// refreshing it on demand or on an interval and reporting what changed.
//
// The client wraps the aggregation pipeline with:
// - Concurrent fetching of the manual dataset and the remote feed
// - Event hooks for entry changes (added, updated, removed)
// - Copy-on-read access to the merged entries
// - Optional background refresh
//
// Example usage:
//
//	client, err := peerreviews.New(
//	    peerreviews.WithManualPath("data/peer-reviews.json"),
//	    peerreviews.WithFeedURL("https://example.org/api/peer-reviews/latest"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.AutoUpdatesOff()
//
//	client.OnEntryAdded(func(e entries.Entry) {
//	    log.Printf("New venue: %s", e.Name)
//	})
//
//	if _, err := client.Update(ctx); err != nil {
//	    log.Printf("partial update: %v", err)
//	}
//	for _, e := range client.Entries() {
//	    fmt.Println(e.Name, e.Years)
//	}
package peerreviews

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/logging"
	"github.com/agentstation/peerreviews/pkg/reconciler"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Reader = (*client)(nil)

// Reader provides copy-on-read access to the merged entries.
type Reader interface {
	// Entries returns a copy of the merged entries in display order.
	Entries() []entries.Entry
	// Snapshot returns the entries together with their freshness and statistics.
	Snapshot() Snapshot
	// LastUpdated returns the freshest source timestamp, if any source had one.
	LastUpdated() (time.Time, bool)
}

// Client manages the merged peer-review list with refresh and event hooks.
type Client interface {
	Reader

	// Updater refreshes the merged list from the sources
	Updater

	// Persistence writes the merged list to disk
	Persistence

	// AutoUpdater provides access to automatic refresh controls
	AutoUpdater

	// Hooks provides access to event callback registration
	Hooks
}

// Snapshot is the merged list at one point in time.
type Snapshot struct {
	Entries     []entries.Entry  `json:"entries" yaml:"entries"`
	LastUpdated *time.Time       `json:"lastUpdated" yaml:"lastUpdated"`
	Stats       reconciler.Stats `json:"stats" yaml:"stats"`
}

// client is the internal implementation of the Client interface.
type client struct {
	options    *options
	reconciler reconciler.Reconciler

	mu          sync.RWMutex
	entries     []entries.Entry
	stats       reconciler.Stats
	lastUpdated time.Time
	hasUpdated  bool
	manual      *sources.Payload // last payload read successfully
	remote      *sources.Payload // last payload read successfully

	updateMu sync.Mutex // serializes Update

	// auto update state
	autoMu       sync.Mutex
	updateTicker *time.Ticker
	stopCh       chan struct{}
	updateCancel context.CancelFunc
	hooks        *hooks
}

// New creates a new Client. When a manual source is configured it is read
// immediately so that entries are available before the first Update.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	rec, err := reconciler.New(o.reconcilerOptions...)
	if err != nil {
		return nil, errors.WrapResource("create", "reconciler", "", err)
	}

	c := &client{
		options:    o,
		reconciler: rec,
		entries:    []entries.Entry{},
		manual:     sources.Empty(),
		remote:     sources.Empty(),
		stopCh:     make(chan struct{}),
		hooks:      newHooks(),
	}
	close(c.stopCh)

	logging.Debug().Interface("sources", o.sources.IDs()).Msg("Configured sources")

	if manual := o.source(sources.ManualID); manual != nil {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		payload, err := manual.Fetch(ctx)
		cancel()
		if err != nil {
			logging.Warn().Err(err).Msg("Manual dataset unavailable at startup")
		} else {
			c.manual = payload
			c.apply(c.reconcile())
		}
		logging.Debug().Int("entries", len(c.entries)).Msg("Loaded initial entries")
	}

	if o.autoUpdatesEnabled {
		if err := c.AutoUpdatesOn(); err != nil {
			return nil, errors.WrapResource("start", "auto-updates", "", err)
		}
	}

	return c, nil
}

// Entries returns a copy of the merged entries.
func (c *client) Entries() []entries.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneEntries(c.entries)
}

// Snapshot returns the merged entries with their metadata.
func (c *client) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{
		Entries: cloneEntries(c.entries),
		Stats:   c.stats,
	}
	if c.hasUpdated {
		t := c.lastUpdated
		s.LastUpdated = &t
	}
	return s
}

// LastUpdated returns the freshest source timestamp.
func (c *client) LastUpdated() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated, c.hasUpdated
}

func cloneEntries(list []entries.Entry) []entries.Entry {
	out := make([]entries.Entry, len(list))
	for i, e := range list {
		out[i] = e.Clone()
	}
	return out
}

// state is one computed merge, not yet published.
type state struct {
	result      *reconciler.Result
	lastUpdated time.Time
	hasUpdated  bool
}

// reconcile merges the stored payloads. Callers hold updateMu or are New.
func (c *client) reconcile() state {
	c.mu.RLock()
	manual, remote := c.manual, c.remote
	c.mu.RUnlock()

	s := state{result: c.reconciler.Entries(manual.Raw(), remote.Raw())}
	s.lastUpdated, s.hasUpdated = sources.LastUpdated(remote.Meta, manual.Meta)
	return s
}

// apply publishes a computed merge and returns the previous entries.
func (c *client) apply(s state) []entries.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous := c.entries
	c.entries = slices.Clip(s.result.Entries)
	c.stats = s.result.Stats
	c.lastUpdated, c.hasUpdated = s.lastUpdated, s.hasUpdated
	return previous
}
