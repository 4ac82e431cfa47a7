package peerreviews

import (
	"sync"

	"github.com/agentstation/peerreviews/pkg/differ"
	"github.com/agentstation/peerreviews/pkg/entries"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for entry events
type (
	// EntryAddedHook is called when an entry appears in the merged list
	EntryAddedHook func(entry entries.Entry)

	// EntryUpdatedHook is called when an entry with the same id changes
	EntryUpdatedHook func(old, updated entries.Entry)

	// EntryRemovedHook is called when an entry disappears from the merged list
	EntryRemovedHook func(entry entries.Entry)
)

// Hooks registers callbacks for changes to the merged list.
type Hooks interface {
	OnEntryAdded(EntryAddedHook)
	OnEntryUpdated(EntryUpdatedHook)
	OnEntryRemoved(EntryRemovedHook)
}

// OnEntryAdded registers a callback for added entries.
func (c *client) OnEntryAdded(fn EntryAddedHook) { c.hooks.OnEntryAdded(fn) }

// OnEntryUpdated registers a callback for updated entries.
func (c *client) OnEntryUpdated(fn EntryUpdatedHook) { c.hooks.OnEntryUpdated(fn) }

// OnEntryRemoved registers a callback for removed entries.
func (c *client) OnEntryRemoved(fn EntryRemovedHook) { c.hooks.OnEntryRemoved(fn) }

// hooks manages event callbacks for entry changes
type hooks struct {
	mu             sync.RWMutex
	onEntryAdded   []EntryAddedHook
	onEntryUpdated []EntryUpdatedHook
	onEntryRemoved []EntryRemovedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) OnEntryAdded(fn EntryAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryAdded = append(h.onEntryAdded, fn)
}

func (h *hooks) OnEntryUpdated(fn EntryUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryUpdated = append(h.onEntryUpdated, fn)
}

func (h *hooks) OnEntryRemoved(fn EntryRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntryRemoved = append(h.onEntryRemoved, fn)
}

// trigger fires the hooks for every change in the changeset, in the order
// added, updated, removed.
func (h *hooks) trigger(changes *differ.Changeset) {
	if !changes.HasChanges() {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, e := range changes.Added {
		for _, hook := range h.onEntryAdded {
			hook(e.Clone())
		}
	}
	for _, u := range changes.Updated {
		for _, hook := range h.onEntryUpdated {
			hook(u.Existing.Clone(), u.New.Clone())
		}
	}
	for _, e := range changes.Removed {
		for _, hook := range h.onEntryRemoved {
			hook(e.Clone())
		}
	}
}
