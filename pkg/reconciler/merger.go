package reconciler

import (
	"slices"

	"github.com/agentstation/peerreviews/pkg/entries"
)

// Merger combines a matched manual/remote pair into one entry.
type Merger interface {
	Merge(manual, remote entries.Entry) entries.Entry
}

// MergerFunc adapts a function to the Merger interface.
type MergerFunc func(manual, remote entries.Entry) entries.Entry

// Merge calls f(manual, remote).
func (f MergerFunc) Merge(manual, remote entries.Entry) entries.Entry {
	return f(manual, remote)
}

// Merge reconciles a matched pair. Remote values win for name, organization,
// role, url and lastReviewed when present; years and the identifier sets are
// unions. The result is tagged merged only when a remote-tagged record meets a
// manual-tagged one, otherwise the remote tag is kept. Neither input is modified.
func Merge(manual, remote entries.Entry) entries.Entry {
	merged := entries.Entry{
		ID:           pick(remote.ID, manual.ID),
		Name:         pick(remote.Name, manual.Name),
		Organization: pick(remote.Organization, manual.Organization),
		Role:         pick(remote.Role, manual.Role),
		Years:        entries.UniqueSortedYears(append(slices.Clone(manual.Years), remote.Years...)...),
		Source:       remote.Source,
		GroupIDs:     union(manual.GroupIDs, remote.GroupIDs),
		Aliases:      union(manual.Aliases, remote.Aliases),
		PutCodes:     union(manual.PutCodes, remote.PutCodes),
	}

	if remote.Source == entries.SourceRemote && manual.Source == entries.SourceManual {
		merged.Source = entries.SourceMerged
	}

	switch {
	case remote.URL != nil && *remote.URL != "":
		merged.URL = clonePtr(remote.URL)
	case manual.URL != nil && *manual.URL != "":
		merged.URL = clonePtr(manual.URL)
	}

	switch {
	case remote.Year() > 0:
		merged.LastReviewed = clonePtr(remote.LastReviewed)
	case manual.Year() > 0:
		merged.LastReviewed = clonePtr(manual.LastReviewed)
	case len(merged.Years) > 0:
		latest := merged.Years[0]
		merged.LastReviewed = &latest
	}

	return merged
}

func pick(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

// union keeps first-seen order, manual values first.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
