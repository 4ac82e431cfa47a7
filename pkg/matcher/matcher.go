// Package matcher finds the manual entry that describes the same reviewing
// activity as a remote entry.
//
// Matching is first-hit, never scored. An exact id hit wins outright.
// Otherwise the first manual entry in index order that satisfies any of the
// fallback heuristics is returned: a case-insensitive name match (both names
// non-empty), a shared group id, or a shared alias. When several manual
// entries qualify, the earliest one wins; that tie-break is defined but
// arbitrary.
package matcher

import (
	"slices"
	"strings"

	"github.com/agentstation/peerreviews/pkg/entries"
)

// Matcher finds the manual counterpart of a remote entry.
type Matcher interface {
	// Match returns the matching manual entry, if any.
	Match(remote entries.Entry) (entries.Entry, bool)
	// Strategy returns the evaluation strategy.
	Strategy() StrategyType
}

// linear scans the index for every remote entry.
type linear struct {
	index *Index
}

// NewLinear returns a matcher that scans idx in order on every call.
func NewLinear(idx *Index) Matcher {
	if idx == nil {
		idx = NewIndex()
	}
	return &linear{index: idx}
}

func (m *linear) Strategy() StrategyType { return StrategyLinearScan }

func (m *linear) Match(remote entries.Entry) (entries.Entry, bool) {
	if e, ok := m.index.Get(remote.ID); ok {
		return e, true
	}

	name := nameKey(remote.Name)
	for _, candidate := range m.index.entries {
		if name != "" && name == nameKey(candidate.Name) {
			return candidate, true
		}
		if intersects(remote.GroupIDs, candidate.GroupIDs) {
			return candidate, true
		}
		if intersects(remote.Aliases, candidate.Aliases) {
			return candidate, true
		}
	}
	return entries.Entry{}, false
}

// indexed answers each heuristic from a lookup table holding the earliest
// position per key. The lookups are built once, so later changes to the
// underlying Index are not seen.
type indexed struct {
	index    *Index
	byName   map[string]int
	byGroup  map[string]int
	byAlias  map[string]int
	snapshot []entries.Entry
}

// NewIndexed returns a matcher with the same results as NewLinear that
// answers in time proportional to the size of the remote entry.
func NewIndexed(idx *Index) Matcher {
	if idx == nil {
		idx = NewIndex()
	}
	m := &indexed{
		index:    idx,
		byName:   make(map[string]int),
		byGroup:  make(map[string]int),
		byAlias:  make(map[string]int),
		snapshot: idx.Entries(),
	}
	for pos, e := range m.snapshot {
		if key := nameKey(e.Name); key != "" {
			setFirst(m.byName, key, pos)
		}
		for _, g := range e.GroupIDs {
			setFirst(m.byGroup, g, pos)
		}
		for _, a := range e.Aliases {
			setFirst(m.byAlias, a, pos)
		}
	}
	return m
}

func (m *indexed) Strategy() StrategyType { return StrategyIndexed }

func (m *indexed) Match(remote entries.Entry) (entries.Entry, bool) {
	if e, ok := m.index.Get(remote.ID); ok {
		return e, true
	}

	best := -1
	consider := func(table map[string]int, key string) {
		if pos, ok := table[key]; ok && (best < 0 || pos < best) {
			best = pos
		}
	}
	if key := nameKey(remote.Name); key != "" {
		consider(m.byName, key)
	}
	for _, g := range remote.GroupIDs {
		consider(m.byGroup, g)
	}
	for _, a := range remote.Aliases {
		consider(m.byAlias, a)
	}

	if best < 0 {
		return entries.Entry{}, false
	}
	return m.snapshot[best], true
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

func setFirst(table map[string]int, key string, pos int) {
	if _, ok := table[key]; !ok {
		table[key] = pos
	}
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}
