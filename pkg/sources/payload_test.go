package sources_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/agentstation/peerreviews/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantEntries int
		wantMeta    bool
		wantErr     bool
	}{
		{"full payload", `{"meta":{"source":"orcid"},"entries":[{"name":"A"},{"name":"B"}]}`, 2, true, false},
		{"entries absent", `{"meta":{}}`, 0, true, false},
		{"entries null", `{"entries":null}`, 0, false, false},
		{"entries not array", `{"entries":{"name":"A"}}`, 0, false, false},
		{"top-level array", `[{"name":"A"}]`, 0, false, false},
		{"top-level null", `null`, 0, false, false},
		{"meta wrong type", `{"meta":"yesterday","entries":[1]}`, 1, false, false},
		{"malformed", `{"entries":[`, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := sources.Decode([]byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEntries, p.Len())
			assert.NotNil(t, p.Entries)
			assert.Equal(t, tt.wantMeta, p.Meta != nil)
		})
	}
}

func TestDecodeMeta(t *testing.T) {
	p, err := sources.Decode([]byte(`{"meta":{
		"fetchedAt":"2024-03-01T10:00:00Z","orcidId":"0000-0002-1825-0097",
		"totalGroups":7,"source":"orcid","error":"","manualUpdatedAt":42}}`))
	require.NoError(t, err)
	require.NotNil(t, p.Meta)
	assert.Equal(t, "2024-03-01T10:00:00Z", p.Meta.FetchedAt)
	assert.Equal(t, "0000-0002-1825-0097", p.Meta.ORCIDID)
	require.NotNil(t, p.Meta.TotalGroups)
	assert.Equal(t, 7, *p.Meta.TotalGroups)
	assert.Equal(t, "", p.Meta.ManualUpdatedAt, "wrong types are ignored")
}

func TestPayloadMarshalJSON(t *testing.T) {
	data, err := json.Marshal(sources.Payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"meta":null,"entries":[]}`, string(data))

	var nilPayload *sources.Payload
	assert.Empty(t, nilPayload.Raw())
	assert.Equal(t, 0, nilPayload.Len())
}

func TestPayloadClone(t *testing.T) {
	total := 3
	p := &sources.Payload{Meta: &sources.Meta{Source: "orcid", TotalGroups: &total}, Entries: []any{"a"}}
	c := p.Clone()
	c.Entries[0] = "b"
	c.Meta.Source = "changed"
	*c.Meta.TotalGroups = 9

	assert.Equal(t, "a", p.Entries[0])
	assert.Equal(t, "orcid", p.Meta.Source)
	assert.Equal(t, 3, *p.Meta.TotalGroups)
}

func TestLastUpdated(t *testing.T) {
	remote := &sources.Meta{FetchedAt: "2024-05-02T08:30:00Z"}
	manual := &sources.Meta{ManualUpdatedAt: "2023-12-31"}
	bad := &sources.Meta{FetchedAt: "not a date", ManualUpdatedAt: "soon"}

	tests := []struct {
		name   string
		remote *sources.Meta
		manual *sources.Meta
		want   string
		ok     bool
	}{
		{"remote preferred", remote, manual, "2024-05-02T08:30:00Z", true},
		{"manual when remote absent", nil, manual, "2023-12-31T00:00:00Z", true},
		{"manual when remote unparseable", bad, manual, "2023-12-31T00:00:00Z", true},
		{"neither parseable", bad, bad, "", false},
		{"both absent", nil, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sources.LastUpdated(tt.remote, tt.manual)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Format(time.RFC3339))
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	for _, in := range []string{"2024-01-02T03:04:05.123Z", "2024-01-02T03:04:05+02:00", "2024-01-02", "2024-01", "2024-01-02 03:04:05"} {
		_, ok := sources.ParseTime(in)
		assert.True(t, ok, in)
	}
	_, ok := sources.ParseTime("  ")
	assert.False(t, ok)
}
