package peerreviews

import (
	"context"
	"errors"

	"github.com/agentstation/peerreviews/pkg/differ"
	"github.com/agentstation/peerreviews/pkg/logging"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater refreshes the merged list.
type Updater interface {
	// Update fetches both sources, re-merges and fires hooks for the
	// differences. The failure of either source is returned alongside the
	// changeset.
	//
	// A failed source is served stale-while-error: its last good payload
	// stays in the merge instead of being replaced by an empty list. Only a
	// source that has never been read successfully contributes nothing, so
	// an unreachable feed on the first fetch leaves only manual data.
	Update(ctx context.Context) (*differ.Changeset, error)
}

// Update refreshes the merged entries.
func (c *client) Update(ctx context.Context) (*differ.Changeset, error) {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	logger := logging.FromContext(ctx)

	if c.options.sources.Len() == 0 {
		logger.Debug().Msg("No sources configured")
	}
	manualSrc, remoteSrc := c.options.source(sources.ManualID), c.options.source(sources.RemoteID)
	manual, remote, fetchErr := sources.FetchAll(ctx, manualSrc, remoteSrc)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, errors.Join(ctxErr, fetchErr)
	}

	c.mu.Lock()
	if manualSrc != nil && !sources.Failed(fetchErr, sources.ManualID) {
		c.manual = manual
	}
	if remoteSrc != nil && !sources.Failed(fetchErr, sources.RemoteID) {
		c.remote = remote
	}
	c.mu.Unlock()

	s := c.reconcile()
	previous := c.apply(s)

	changes := differ.New(c.options.differOptions...).Entries(previous, s.result.Entries)
	logger.Info().
		Int("entries", len(s.result.Entries)).
		Int("added", len(changes.Added)).
		Int("updated", len(changes.Updated)).
		Int("removed", len(changes.Removed)).
		Dur("duration", s.result.Duration).
		Msg("Peer reviews updated")

	c.hooks.trigger(changes)
	return changes, fetchErr
}
