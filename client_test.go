package peerreviews

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// mutableSource serves whatever payload or error it currently holds.
type mutableSource struct {
	id      sources.ID
	mu      sync.Mutex
	payload *sources.Payload
	err     error
	calls   int
}

func (m *mutableSource) ID() sources.ID { return m.id }

func (m *mutableSource) Fetch(context.Context) (*sources.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.payload.Clone(), nil
}

func (m *mutableSource) set(p *sources.Payload, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload, m.err = p, err
}

func (m *mutableSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func payload(meta *sources.Meta, records ...map[string]any) *sources.Payload {
	list := make([]any, len(records))
	for i, r := range records {
		list[i] = r
	}
	return &sources.Payload{Meta: meta, Entries: list}
}

func newSources() (*mutableSource, *mutableSource) {
	manual := &mutableSource{id: sources.ManualID}
	manual.set(payload(&sources.Meta{ManualUpdatedAt: "2024-01-10"},
		map[string]any{"name": "Nature", "organization": "Springer", "years": []any{2019.0}},
		map[string]any{"name": "Cell", "years": []any{2018.0}},
	), nil)

	remote := &mutableSource{id: sources.RemoteID}
	remote.set(payload(&sources.Meta{FetchedAt: "2024-05-01T00:00:00Z"},
		map[string]any{"name": "Nature", "years": []any{2021.0}, "url": "https://nature.com"},
		map[string]any{"name": "Science", "years": []any{2020.0}},
	), nil)
	return manual, remote
}

func ids(list []entries.Entry) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestNewLoadsManualDataset(t *testing.T) {
	manual, remote := newSources()
	c, err := New(WithManualSource(manual), WithRemoteSource(remote))
	require.NoError(t, err)

	assert.Equal(t, []string{"nature", "cell"}, ids(c.Entries()))
	assert.Equal(t, 0, remote.callCount())

	last, ok := c.LastUpdated()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), last)
}

func TestUpdate(t *testing.T) {
	manual, remote := newSources()
	c, err := New(WithManualSource(manual), WithRemoteSource(remote))
	require.NoError(t, err)

	var added, updated, removed []string
	c.OnEntryAdded(func(e entries.Entry) { added = append(added, e.ID) })
	c.OnEntryUpdated(func(_, e entries.Entry) { updated = append(updated, e.ID) })
	c.OnEntryRemoved(func(e entries.Entry) { removed = append(removed, e.ID) })

	changes, err := c.Update(context.Background())
	require.NoError(t, err)
	require.NotNil(t, changes)

	assert.Equal(t, []string{"nature", "science", "cell"}, ids(c.Entries()))
	assert.Equal(t, []string{"science"}, added)
	assert.Equal(t, []string{"nature"}, updated)
	assert.Empty(t, removed)

	snap := c.Snapshot()
	require.NotNil(t, snap.LastUpdated)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *snap.LastUpdated)
	assert.Equal(t, 1, snap.Stats.Matched)
	assert.Equal(t, entries.SourceMerged, snap.Entries[0].Source)

	// Nothing changed upstream, so no hooks fire.
	added, updated = nil, nil
	changes, err = c.Update(context.Background())
	require.NoError(t, err)
	assert.False(t, changes.HasChanges())
	assert.Empty(t, added)
	assert.Empty(t, updated)
}

func TestUpdateKeepsLastGoodPayload(t *testing.T) {
	manual, remote := newSources()
	c, err := New(WithManualSource(manual), WithRemoteSource(remote))
	require.NoError(t, err)

	_, err = c.Update(context.Background())
	require.NoError(t, err)
	before := ids(c.Entries())

	boom := errors.New("feed unavailable")
	remote.set(nil, boom)

	changes, err := c.Update(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, sources.Failed(err, sources.RemoteID))
	assert.False(t, changes.HasChanges())
	assert.Equal(t, before, ids(c.Entries()))
}

func TestUpdateRemovedEntries(t *testing.T) {
	manual, remote := newSources()
	c, err := New(WithManualSource(manual), WithRemoteSource(remote))
	require.NoError(t, err)
	_, err = c.Update(context.Background())
	require.NoError(t, err)

	var removed []string
	c.OnEntryRemoved(func(e entries.Entry) { removed = append(removed, e.ID) })

	remote.set(payload(nil), nil)
	_, err = c.Update(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"science"}, removed)
}

func TestEntriesReturnsCopy(t *testing.T) {
	manual, _ := newSources()
	c, err := New(WithManualSource(manual))
	require.NoError(t, err)

	list := c.Entries()
	list[0].Years[0] = 1900
	list[0].Name = "changed"

	fresh := c.Entries()
	assert.Equal(t, "Nature", fresh[0].Name)
	assert.Equal(t, []int{2019}, fresh[0].Years)
}

func TestNewWithoutSources(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.Empty(t, c.Entries())
	_, ok := c.LastUpdated()
	assert.False(t, ok)

	changes, err := c.Update(context.Background())
	require.NoError(t, err)
	assert.False(t, changes.HasChanges())
}

func TestOptionErrors(t *testing.T) {
	_, err := New(WithManualPath(""))
	assert.Error(t, err)
	_, err = New(WithFeedURL(""))
	assert.Error(t, err)
	_, err = New(WithAutoUpdates(true), WithAutoUpdateInterval(0))
	assert.Error(t, err)
}

func TestSourceRegistration(t *testing.T) {
	manual, remote := newSources()
	// The remote payload served from the manual slot.
	o, err := defaults().apply(WithManualSource(remote), WithRemoteSource(manual))
	require.NoError(t, err)
	assert.Equal(t, []sources.ID{sources.ManualID, sources.RemoteID}, o.sources.IDs())
	assert.Equal(t, sources.ManualID, o.source(sources.ManualID).ID())
	assert.Equal(t, sources.RemoteID, o.source(sources.RemoteID).ID())

	o, err = defaults().apply(WithManualSource(manual), WithManualSource(nil))
	require.NoError(t, err)
	assert.Nil(t, o.source(sources.ManualID))
	assert.Equal(t, 0, o.sources.Len())
}

func TestUpdateFirstFetchFailureShowsManualOnly(t *testing.T) {
	manual, _ := newSources()
	boom := errors.New("feed unavailable")
	remote := &mutableSource{id: sources.RemoteID, err: boom}

	c, err := New(WithManualSource(manual), WithRemoteSource(remote))
	require.NoError(t, err)

	_, err = c.Update(context.Background())
	require.Error(t, err)
	assert.True(t, sources.Failed(err, sources.RemoteID))
	assert.Equal(t, []string{"nature", "cell"}, ids(c.Entries()))
	for _, e := range c.Entries() {
		assert.Equal(t, entries.SourceManual, e.Source)
	}
}

func TestAutoUpdates(t *testing.T) {
	manual, remote := newSources()
	c, err := New(
		WithManualSource(manual),
		WithRemoteSource(remote),
		WithAutoUpdates(true),
		WithAutoUpdateInterval(10*time.Millisecond),
	)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return remote.callCount() >= 2 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, c.AutoUpdatesOff())
	require.NoError(t, c.AutoUpdatesOff())

	time.Sleep(30 * time.Millisecond)
	settled := remote.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, remote.callCount())
}

func TestSave(t *testing.T) {
	manual, remote := newSources()
	c, err := New(WithManualSource(manual), WithRemoteSource(remote))
	require.NoError(t, err)
	_, err = c.Update(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out", "merged.json")
	require.NoError(t, c.Save(jsonPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc struct {
		Meta    sources.Meta     `json:"meta"`
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "merged", doc.Meta.Source)
	assert.Equal(t, "2024-05-01T00:00:00Z", doc.Meta.FetchedAt)
	require.Len(t, doc.Entries, 3)
	assert.Equal(t, "nature", doc.Entries[0]["id"])

	yamlPath := filepath.Join(dir, "merged.yaml")
	require.NoError(t, c.Save(yamlPath))
	raw, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "entries:")
	assert.Contains(t, string(raw), "id: nature")

	assert.Error(t, c.Save(""))
}
