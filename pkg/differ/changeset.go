// Package differ compares two entry lists by id and reports what changed.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/peerreviews/pkg/entries"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an entry was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an entry was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an entry was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a single field.
type FieldChange struct {
	Path     string     `json:"path"`     // Field name (e.g., "years")
	OldValue string     `json:"oldValue"` // Previous value (string representation)
	NewValue string     `json:"newValue"` // New value (string representation)
	Type     ChangeType `json:"type"`
}

// EntryUpdate represents an update to an existing entry.
type EntryUpdate struct {
	ID       string        `json:"id"`
	Existing entries.Entry `json:"existing"`
	New      entries.Entry `json:"new"`
	Changes  []FieldChange `json:"changes"`
}

// Changeset represents all changes between two entry lists.
type Changeset struct {
	Added   []entries.Entry `json:"added"`
	Updated []EntryUpdate   `json:"updated"`
	Removed []entries.Entry `json:"removed"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c != nil && (len(c.Added) > 0 || len(c.Updated) > 0 || len(c.Removed) > 0)
}

// Total returns the number of changed entries.
func (c *Changeset) Total() int {
	if c == nil {
		return 0
	}
	return len(c.Added) + len(c.Updated) + len(c.Removed)
}

// String returns a one-line summary of the changeset.
func (c *Changeset) String() string {
	if !c.HasChanges() {
		return "No changes detected"
	}
	parts := []string{}
	if n := len(c.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(c.Updated); n > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", n))
	}
	if n := len(c.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	return fmt.Sprintf("Entries: %s (Total: %d changes)", strings.Join(parts, ", "), c.Total())
}

// Print writes a human-readable view of the changeset.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	if !c.HasChanges() {
		return
	}
	fmt.Fprintln(w, strings.Repeat("─", 60))

	if len(c.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added (%d):\n", len(c.Added))
		for _, e := range c.Added {
			fmt.Fprintf(w, "  • %s%s\n", e.ID, label(e))
		}
	}
	if len(c.Updated) > 0 {
		fmt.Fprintf(w, "\n🔄 Updated (%d):\n", len(c.Updated))
		for _, u := range c.Updated {
			fmt.Fprintf(w, "  • %s\n", u.ID)
			for _, change := range u.Changes {
				fmt.Fprintf(w, "    - %s: %s → %s\n", change.Path, change.OldValue, change.NewValue)
			}
		}
	}
	if len(c.Removed) > 0 {
		fmt.Fprintf(w, "\n➖ Removed (%d):\n", len(c.Removed))
		for _, e := range c.Removed {
			fmt.Fprintf(w, "  • %s%s\n", e.ID, label(e))
		}
	}
}

func label(e entries.Entry) string {
	if e.Name == "" || e.Name == e.ID {
		return ""
	}
	return fmt.Sprintf(" (%s)", e.Name)
}
