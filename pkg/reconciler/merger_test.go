package reconciler_test

import (
	"testing"

	"github.com/agentstation/peerreviews/internal/utils/ptr"
	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/reconciler"
	"github.com/stretchr/testify/assert"
)

func TestMergeUnion(t *testing.T) {
	manual := entries.Entry{ID: "m", Name: "Nature", Years: []int{2021}, LastReviewed: ptr.Int(2021), Source: entries.SourceManual}
	remote := entries.Entry{ID: "r", Name: "Nature", Years: []int{2023}, LastReviewed: ptr.Int(2023), Source: entries.SourceRemote}

	merged := reconciler.Merge(manual, remote)
	assert.Equal(t, []int{2023, 2021}, merged.Years)
	assert.Equal(t, ptr.Int(2023), merged.LastReviewed)
	assert.Equal(t, entries.SourceMerged, merged.Source)
	assert.Equal(t, "r", merged.ID)
}

func TestMergeFieldPrecedence(t *testing.T) {
	manual := entries.Entry{
		ID:           "manual-id",
		Name:         "Manual Name",
		Organization: "Manual Org",
		Role:         "editor",
		URL:          ptr.String("https://manual.example"),
		Source:       entries.SourceManual,
		GroupIDs:     []string{"g1", "g2"},
		Aliases:      []string{"a1"},
		PutCodes:     []string{"p1"},
	}

	tests := []struct {
		name   string
		remote entries.Entry
		check  func(t *testing.T, merged entries.Entry)
	}{
		{
			name:   "empty remote falls back to manual",
			remote: entries.Entry{Source: entries.SourceRemote},
			check: func(t *testing.T, merged entries.Entry) {
				assert.Equal(t, "manual-id", merged.ID)
				assert.Equal(t, "Manual Name", merged.Name)
				assert.Equal(t, "Manual Org", merged.Organization)
				assert.Equal(t, "editor", merged.Role)
				assert.Equal(t, ptr.String("https://manual.example"), merged.URL)
				assert.Nil(t, merged.LastReviewed)
			},
		},
		{
			name: "remote values win",
			remote: entries.Entry{
				ID: "remote-id", Name: "Remote Name", Organization: "Remote Org", Role: "reviewer",
				URL: ptr.String("https://remote.example"), Source: entries.SourceRemote,
			},
			check: func(t *testing.T, merged entries.Entry) {
				assert.Equal(t, "remote-id", merged.ID)
				assert.Equal(t, "Remote Name", merged.Name)
				assert.Equal(t, "Remote Org", merged.Organization)
				assert.Equal(t, "reviewer", merged.Role)
				assert.Equal(t, ptr.String("https://remote.example"), merged.URL)
			},
		},
		{
			name:   "empty remote url ignored",
			remote: entries.Entry{URL: ptr.String(""), Source: entries.SourceRemote},
			check: func(t *testing.T, merged entries.Entry) {
				assert.Equal(t, ptr.String("https://manual.example"), merged.URL)
			},
		},
		{
			name:   "sets are unions in first-seen order",
			remote: entries.Entry{GroupIDs: []string{"g2", "g3"}, Aliases: []string{"a2"}, PutCodes: []string{"p1"}, Source: entries.SourceRemote},
			check: func(t *testing.T, merged entries.Entry) {
				assert.Equal(t, []string{"g1", "g2", "g3"}, merged.GroupIDs)
				assert.Equal(t, []string{"a1", "a2"}, merged.Aliases)
				assert.Equal(t, []string{"p1"}, merged.PutCodes)
			},
		},
		{
			name:   "foreign remote tag kept",
			remote: entries.Entry{Source: entries.SourceORCID},
			check: func(t *testing.T, merged entries.Entry) {
				assert.Equal(t, entries.SourceORCID, merged.Source)
			},
		},
		{
			name:   "already merged remote stays merged",
			remote: entries.Entry{Source: entries.SourceMerged},
			check: func(t *testing.T, merged entries.Entry) {
				assert.Equal(t, entries.SourceMerged, merged.Source)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, reconciler.Merge(manual, tt.remote))
		})
	}
}

func TestMergeSourceRequiresManualTag(t *testing.T) {
	manual := entries.Entry{Source: entries.Source("curated")}
	remote := entries.Entry{Source: entries.SourceRemote}
	assert.Equal(t, entries.SourceRemote, reconciler.Merge(manual, remote).Source)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	manual := entries.Entry{ID: "m", Years: []int{2020}, GroupIDs: []string{"g"}, URL: ptr.String("u"), Source: entries.SourceManual}
	remote := entries.Entry{ID: "r", Years: []int{2022}, Aliases: []string{"a"}, LastReviewed: ptr.Int(2022), Source: entries.SourceRemote}
	manualBefore, remoteBefore := manual.Clone(), remote.Clone()

	merged := reconciler.Merge(manual, remote)
	merged.Years[0] = 1
	merged.GroupIDs[0] = "changed"
	*merged.URL = "changed"
	*merged.LastReviewed = 1

	assert.Equal(t, manualBefore, manual.Clone())
	assert.Equal(t, remoteBefore, remote.Clone())
}
