// Package filter narrows entry lists for CLI output.
package filter

import (
	"slices"
	"strings"

	"github.com/agentstation/peerreviews/pkg/entries"
)

// EntryFilter selects entries. Zero-valued fields do not filter.
type EntryFilter struct {
	Pattern      *Pattern // matched against id, name, organization, aliases and group ids
	Source       string   // exact source tag
	Organization string   // case-insensitive substring
	Year         int      // reviewed in this year
	Since        int      // last reviewed in or after this year
}

// New builds a filter from a pattern (glob or regex, auto-detected) and the
// remaining criteria.
func New(pattern string) (*EntryFilter, error) {
	f := &EntryFilter{}
	if pattern == "" {
		return f, nil
	}
	p, err := Compile(Auto, pattern)
	if err != nil {
		return nil, err
	}
	f.Pattern = p
	return f, nil
}

// Apply returns the entries that pass every criterion, in their original order.
func (f *EntryFilter) Apply(list []entries.Entry) []entries.Entry {
	if f == nil || f.isEmpty() {
		return list
	}

	filtered := make([]entries.Entry, 0, len(list))
	for _, e := range list {
		if f.matches(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (f *EntryFilter) isEmpty() bool {
	return f.Pattern == nil &&
		f.Source == "" &&
		f.Organization == "" &&
		f.Year == 0 &&
		f.Since == 0
}

func (f *EntryFilter) matches(e entries.Entry) bool {
	if f.Source != "" && string(e.Source) != f.Source {
		return false
	}
	if f.Organization != "" && !strings.Contains(strings.ToLower(e.Organization), strings.ToLower(f.Organization)) {
		return false
	}
	if f.Year != 0 && !slices.Contains(e.Years, f.Year) {
		return false
	}
	if f.Since != 0 && (e.LastReviewed == nil || *e.LastReviewed < f.Since) {
		return false
	}
	if f.Pattern != nil {
		fields := append([]string{e.ID, e.Name, e.Organization}, e.Aliases...)
		fields = append(fields, e.GroupIDs...)
		if !f.Pattern.MatchAny(fields...) {
			return false
		}
	}
	return true
}
