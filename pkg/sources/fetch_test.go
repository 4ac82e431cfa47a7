package sources_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agentstation/peerreviews/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{ err error }

func (f failingSource) ID() sources.ID { return sources.RemoteID }

func (f failingSource) Fetch(context.Context) (*sources.Payload, error) { return nil, f.err }

func TestFetchAll(t *testing.T) {
	manual := sources.NewStatic(sources.ManualID, &sources.Payload{Entries: []any{map[string]any{"name": "A"}}})
	remote := sources.NewStatic(sources.RemoteID, &sources.Payload{Entries: []any{map[string]any{"name": "B"}, map[string]any{"name": "C"}}})

	m, r, err := sources.FetchAll(context.Background(), manual, remote)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, r.Len())
}

func TestFetchAllDegradesToEmpty(t *testing.T) {
	boom := errors.New("upstream down")
	manual := sources.NewStatic(sources.ManualID, &sources.Payload{Entries: []any{map[string]any{"name": "A"}}})

	m, r, err := sources.FetchAll(context.Background(), manual, failingSource{err: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, sources.Failed(err, sources.RemoteID))
	assert.False(t, sources.Failed(err, sources.ManualID))
	assert.Equal(t, 1, m.Len())
	assert.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
}

func TestFetchAllNilSources(t *testing.T) {
	m, r, err := sources.FetchAll(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, r.Len())
}

func TestSourcesRegistry(t *testing.T) {
	reg := sources.NewSources(sources.NewStatic(sources.RemoteID, nil), sources.NewStatic(sources.ManualID, nil), nil)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []sources.ID{sources.ManualID, sources.RemoteID}, reg.IDs())

	src, ok := reg.Get(sources.ManualID)
	require.True(t, ok)
	p, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())

	reg.Delete(sources.ManualID)
	_, ok = reg.Get(sources.ManualID)
	assert.False(t, ok)
}

func TestRenameTagsFailures(t *testing.T) {
	boom := errors.New("no such file")
	renamed := sources.Rename(sources.ManualID, failingSource{err: boom})
	assert.Equal(t, sources.ManualID, renamed.ID())

	_, _, err := sources.FetchAll(context.Background(), renamed, nil)
	require.Error(t, err)
	assert.True(t, sources.Failed(err, sources.ManualID))
	assert.False(t, sources.Failed(err, sources.RemoteID))
}
