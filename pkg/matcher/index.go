package matcher

import (
	"github.com/agentstation/peerreviews/pkg/entries"
)

// Index holds manual entries keyed by id in insertion order.
// Setting an id that is already present replaces the entry but keeps
// its original position. Index is not safe for concurrent mutation.
type Index struct {
	positions map[string]int
	entries   []entries.Entry
}

// NewIndex builds an index from the given entries, later ids overwriting earlier ones.
func NewIndex(es ...entries.Entry) *Index {
	idx := &Index{positions: make(map[string]int, len(es))}
	for _, e := range es {
		idx.Set(e)
	}
	return idx
}

// Set inserts or replaces the entry stored under e.ID.
func (idx *Index) Set(e entries.Entry) {
	if pos, ok := idx.positions[e.ID]; ok {
		idx.entries[pos] = e
		return
	}
	idx.positions[e.ID] = len(idx.entries)
	idx.entries = append(idx.entries, e)
}

// Get returns the entry stored under id.
func (idx *Index) Get(id string) (entries.Entry, bool) {
	pos, ok := idx.positions[id]
	if !ok {
		return entries.Entry{}, false
	}
	return idx.entries[pos], true
}

// Position returns the insertion position of id, or -1.
func (idx *Index) Position(id string) int {
	if pos, ok := idx.positions[id]; ok {
		return pos
	}
	return -1
}

// Len returns the number of distinct ids.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns the stored entries in insertion order.
func (idx *Index) Entries() []entries.Entry {
	out := make([]entries.Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}
