package differ_test

import (
	"bytes"
	"testing"

	"github.com/agentstation/peerreviews/internal/utils/ptr"
	"github.com/agentstation/peerreviews/pkg/differ"
	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries(t *testing.T) {
	existing := []entries.Entry{
		{ID: "keep", Name: "Keep", Years: []int{2020}},
		{ID: "change", Name: "Change", Years: []int{2020}, LastReviewed: ptr.Int(2020)},
		{ID: "drop", Name: "Drop"},
	}
	updated := []entries.Entry{
		{ID: "keep", Name: "Keep", Years: []int{2020}},
		{ID: "change", Name: "Change", Years: []int{2022, 2020}, LastReviewed: ptr.Int(2022), URL: ptr.String("https://x")},
		{ID: "new", Name: "New"},
	}

	cs := differ.New().Entries(existing, updated)
	require.True(t, cs.HasChanges())
	assert.Equal(t, 3, cs.Total())

	require.Len(t, cs.Added, 1)
	assert.Equal(t, "new", cs.Added[0].ID)
	require.Len(t, cs.Removed, 1)
	assert.Equal(t, "drop", cs.Removed[0].ID)
	require.Len(t, cs.Updated, 1)

	paths := []string{}
	for _, c := range cs.Updated[0].Changes {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"years", "lastReviewed", "url"}, paths)
	assert.Equal(t, "2020", cs.Updated[0].Changes[0].OldValue)
	assert.Equal(t, "2022, 2020", cs.Updated[0].Changes[0].NewValue)
	assert.Equal(t, "Entries: 1 added, 1 updated, 1 removed (Total: 3 changes)", cs.String())
}

func TestEntriesIgnoredFields(t *testing.T) {
	a := []entries.Entry{{ID: "x", Source: entries.SourceManual}}
	b := []entries.Entry{{ID: "x", Source: entries.SourceMerged}}

	assert.True(t, differ.New().Entries(a, b).HasChanges())
	assert.False(t, differ.New(differ.WithIgnoredFields("source")).Entries(a, b).HasChanges())
}

func TestChangesetPrint(t *testing.T) {
	var buf bytes.Buffer
	cs := differ.New().Entries(nil, []entries.Entry{{ID: "nature", Name: "Nature"}})
	cs.Print(&buf)
	assert.Contains(t, buf.String(), "nature (Nature)")

	buf.Reset()
	empty := differ.New().Entries(nil, nil)
	empty.Print(&buf)
	assert.Equal(t, "No changes detected\n", buf.String())

	var nilCS *differ.Changeset
	assert.False(t, nilCS.HasChanges())
}

func TestEntriesDuplicateIDs(t *testing.T) {
	first := entries.Entry{ID: "nature", Name: "Nature", GroupIDs: []string{"issn:1"}}
	second := entries.Entry{ID: "nature", Name: "Nature", GroupIDs: []string{"issn:2"}}

	tests := []struct {
		name                    string
		existing, next          []entries.Entry
		added, updated, removed int
	}{
		{"both added", nil, []entries.Entry{first, second}, 2, 0, 0},
		{"second removed", []entries.Entry{first, second}, []entries.Entry{first}, 0, 0, 1},
		{"both removed", []entries.Entry{first, second}, nil, 0, 0, 2},
		{"unchanged", []entries.Entry{first, second}, []entries.Entry{first, second}, 0, 0, 0},
		{"one more", []entries.Entry{first}, []entries.Entry{first, second}, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := differ.New().Entries(tt.existing, tt.next)
			assert.Len(t, cs.Added, tt.added)
			assert.Len(t, cs.Updated, tt.updated)
			assert.Len(t, cs.Removed, tt.removed)
		})
	}

	cs := differ.New().Entries([]entries.Entry{first, second}, []entries.Entry{first})
	require.Len(t, cs.Removed, 1)
	assert.Equal(t, []string{"issn:2"}, cs.Removed[0].GroupIDs)
}
