package differ

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/peerreviews/pkg/entries"
)

// Differ handles change detection between entry lists.
type Differ interface {
	// Entries compares two lists keyed by id.
	Entries(existing, updated []entries.Entry) *Changeset
}

type differ struct {
	ignoreFields map[string]bool
}

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithIgnoredFields skips the named fields (json names) during comparison.
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// New creates a Differ.
func New(opts ...Option) Differ {
	d := &differ{ignoreFields: make(map[string]bool)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Entries compares two lists keyed by id. Entries sharing an id (two feed
// groups with the same title) are paired by their position among that id's
// occurrences. Results are sorted by id.
func (d *differ) Entries(existing, updated []entries.Entry) *Changeset {
	cs := &Changeset{
		Added:   []entries.Entry{},
		Updated: []EntryUpdate{},
		Removed: []entries.Entry{},
	}

	before, beforeOrder := keyed(existing)
	after, afterOrder := keyed(updated)

	for _, k := range afterOrder {
		next := after[k]
		prev, ok := before[k]
		if !ok {
			cs.Added = append(cs.Added, next)
			continue
		}
		if changes := d.fields(prev, next); len(changes) > 0 {
			cs.Updated = append(cs.Updated, EntryUpdate{ID: k.id, Existing: prev, New: next, Changes: changes})
		}
	}
	for _, k := range beforeOrder {
		if _, ok := after[k]; !ok {
			cs.Removed = append(cs.Removed, before[k])
		}
	}

	byID := func(a, b entries.Entry) int { return strings.Compare(a.ID, b.ID) }
	slices.SortStableFunc(cs.Added, byID)
	slices.SortStableFunc(cs.Removed, byID)
	slices.SortStableFunc(cs.Updated, func(a, b EntryUpdate) int { return strings.Compare(a.ID, b.ID) })
	return cs
}

// key identifies the n-th entry carrying an id.
type key struct {
	id string
	n  int
}

func keyed(list []entries.Entry) (map[key]entries.Entry, []key) {
	m := make(map[key]entries.Entry, len(list))
	order := make([]key, 0, len(list))
	seen := make(map[string]int, len(list))
	for _, e := range list {
		k := key{id: e.ID, n: seen[e.ID]}
		seen[e.ID]++
		m[k] = e
		order = append(order, k)
	}
	return m, order
}

func (d *differ) fields(prev, next entries.Entry) []FieldChange {
	pairs := []struct {
		path     string
		before, after string
	}{
		{"name", prev.Name, next.Name},
		{"organization", prev.Organization, next.Organization},
		{"role", prev.Role, next.Role},
		{"years", joinInts(prev.Years), joinInts(next.Years)},
		{"lastReviewed", intPtr(prev.LastReviewed), intPtr(next.LastReviewed)},
		{"url", strPtr(prev.URL), strPtr(next.URL)},
		{"source", prev.Source.String(), next.Source.String()},
		{"groupIds", strings.Join(prev.GroupIDs, ", "), strings.Join(next.GroupIDs, ", ")},
		{"aliases", strings.Join(prev.Aliases, ", "), strings.Join(next.Aliases, ", ")},
		{"putCodes", strings.Join(prev.PutCodes, ", "), strings.Join(next.PutCodes, ", ")},
	}

	changes := []FieldChange{}
	for _, p := range pairs {
		if p.before == p.after || d.ignoreFields[p.path] {
			continue
		}
		changes = append(changes, FieldChange{Path: p.path, OldValue: p.before, NewValue: p.after, Type: ChangeTypeUpdate})
	}
	return changes
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

func intPtr(p *int) string {
	if p == nil {
		return "null"
	}
	return strconv.Itoa(*p)
}

func strPtr(p *string) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *p)
}
