package sources

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/peerreviews/pkg/errors"
)

// Payload is the {meta, entries} document every source produces.
type Payload struct {
	Meta    *Meta `json:"meta"`
	Entries []any `json:"entries"`
}

// Meta describes where and when a payload was produced.
// Timestamps are kept as received; see Time for parsing.
type Meta struct {
	FetchedAt       string `json:"fetchedAt,omitempty" yaml:"fetchedAt,omitempty"`
	ManualUpdatedAt string `json:"manualUpdatedAt,omitempty" yaml:"manualUpdatedAt,omitempty"`
	Source          string `json:"source,omitempty" yaml:"source,omitempty"`
	ORCIDID         string `json:"orcidId,omitempty" yaml:"orcidId,omitempty"`
	TotalGroups     *int   `json:"totalGroups,omitempty" yaml:"totalGroups,omitempty"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Empty returns a payload with no meta and no entries.
func Empty() *Payload {
	return &Payload{Entries: []any{}}
}

// Raw returns the entries, treating a nil payload as empty.
func (p *Payload) Raw() []any {
	if p == nil || p.Entries == nil {
		return []any{}
	}
	return p.Entries
}

// Len returns the number of raw entries.
func (p *Payload) Len() int {
	return len(p.Raw())
}

// Clone returns a shallow copy with its own entries slice and meta.
func (p *Payload) Clone() *Payload {
	if p == nil {
		return Empty()
	}
	c := &Payload{Entries: slices.Clone(p.Raw())}
	if p.Meta != nil {
		m := *p.Meta
		if m.TotalGroups != nil {
			n := *m.TotalGroups
			m.TotalGroups = &n
		}
		c.Meta = &m
	}
	return c
}

// MarshalJSON always emits an entries array.
func (p Payload) MarshalJSON() ([]byte, error) {
	type plain Payload
	if p.Entries == nil {
		p.Entries = []any{}
	}
	return json.Marshal(plain(p))
}

// Decode parses a payload leniently. Valid JSON that is not an object yields
// an empty payload, as does an entries field that is absent, null or not an
// array. Meta fields of the wrong type are ignored. Only malformed JSON is an error.
func Decode(data []byte) (*Payload, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		if json.Valid(data) {
			return Empty(), nil
		}
		return nil, errors.WrapParse("json", "", err)
	}

	p := Empty()
	if raw, ok := top["entries"]; ok {
		var list []any
		if json.Unmarshal(raw, &list) == nil && list != nil {
			p.Entries = list
		}
	}
	if raw, ok := top["meta"]; ok {
		var fields map[string]any
		if json.Unmarshal(raw, &fields) == nil && fields != nil {
			p.Meta = metaFromFields(fields)
		}
	}
	return p, nil
}

func metaFromFields(fields map[string]any) *Meta {
	str := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}
	m := &Meta{
		FetchedAt:       str("fetchedAt"),
		ManualUpdatedAt: str("manualUpdatedAt"),
		Source:          str("source"),
		ORCIDID:         str("orcidId"),
		Error:           str("error"),
	}
	if n, ok := fields["totalGroups"].(float64); ok && n >= 0 && n == float64(int(n)) {
		total := int(n)
		m.TotalGroups = &total
	}
	return m
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
	"2006-01",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTime parses the date formats seen in payload metadata.
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// LastUpdated picks the timestamp shown as "last updated": the remote
// fetchedAt when it parses, else the manual manualUpdatedAt when it parses.
func LastUpdated(remote, manual *Meta) (time.Time, bool) {
	if remote != nil {
		if t, ok := ParseTime(remote.FetchedAt); ok {
			return t, true
		}
	}
	if manual != nil {
		if t, ok := ParseTime(manual.ManualUpdatedAt); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
