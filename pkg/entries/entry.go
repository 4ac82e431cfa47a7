package entries

import (
	"encoding/json"
	"slices"
)

// Entry is one canonical peer-review-activity record.
type Entry struct {
	ID           string   `json:"id" yaml:"id"`                     // Stable slug, non-empty except when name and organization are both empty
	Name         string   `json:"name" yaml:"name"`                 // Reviewed venue or subject
	Organization string   `json:"organization" yaml:"organization"` // Publisher or convening organization
	Role         string   `json:"role" yaml:"role"`                 // Reviewer role
	Years        []int    `json:"years" yaml:"years"`               // Distinct years, strictly descending
	LastReviewed *int     `json:"lastReviewed" yaml:"lastReviewed"` // Years[0] when Years is non-empty
	URL          *string  `json:"url" yaml:"url"`                   // Optional link
	Source       Source   `json:"source" yaml:"source"`             // manual, remote, merged or an upstream tag
	GroupIDs     []string `json:"groupIds" yaml:"groupIds"`         // Cross-registry group identifiers
	Aliases      []string `json:"aliases" yaml:"aliases"`           // Alternate identifiers used for matching
	PutCodes     []string `json:"putCodes" yaml:"putCodes"`         // Registry-internal record codes
}

// MarshalJSON encodes nil sets as empty arrays so consumers never see null lists.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	p := plain(e.withEmptySets())
	return json.Marshal(p)
}

// withEmptySets replaces nil slices with empty ones.
func (e Entry) withEmptySets() Entry {
	if e.Years == nil {
		e.Years = []int{}
	}
	if e.GroupIDs == nil {
		e.GroupIDs = []string{}
	}
	if e.Aliases == nil {
		e.Aliases = []string{}
	}
	if e.PutCodes == nil {
		e.PutCodes = []string{}
	}
	return e
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	c := e
	c.Years = slices.Clone(e.Years)
	c.GroupIDs = slices.Clone(e.GroupIDs)
	c.Aliases = slices.Clone(e.Aliases)
	c.PutCodes = slices.Clone(e.PutCodes)
	if e.LastReviewed != nil {
		v := *e.LastReviewed
		c.LastReviewed = &v
	}
	if e.URL != nil {
		v := *e.URL
		c.URL = &v
	}
	return c.withEmptySets()
}

// Normalized returns a copy with Years deduplicated and sorted descending and
// LastReviewed set to the latest year. Without years, LastReviewed is kept.
func (e Entry) Normalized() Entry {
	c := e.Clone()
	c.Years = UniqueSortedYears(e.Years...)
	if len(c.Years) > 0 {
		latest := c.Years[0]
		c.LastReviewed = &latest
	}
	return c
}

// Year returns LastReviewed, or 0 when the entry has no year.
func (e Entry) Year() int {
	if e.LastReviewed == nil {
		return 0
	}
	return *e.LastReviewed
}

// Raw converts the entry back to the decoded-JSON shape that Normalize accepts.
func (e Entry) Raw() map[string]any {
	raw := map[string]any{
		"id":           e.ID,
		"name":         e.Name,
		"organization": e.Organization,
		"role":         e.Role,
		"years":        toAnySlice(e.Years),
		"source":       string(e.Source),
		"groupIds":     toAnySlice(e.GroupIDs),
		"aliases":      toAnySlice(e.Aliases),
		"putCodes":     toAnySlice(e.PutCodes),
	}
	if e.LastReviewed != nil {
		raw["lastReviewed"] = *e.LastReviewed
	}
	if e.URL != nil {
		raw["url"] = *e.URL
	}
	return raw
}

func toAnySlice[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
