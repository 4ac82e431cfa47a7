package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/sources/local"
	"github.com/agentstation/peerreviews/internal/sources/orcid"
	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/sources"
	"github.com/agentstation/peerreviews/internal/utils/ptr"
)

type stubRegistry struct {
	payload *sources.Payload
	err     error
}

func (s *stubRegistry) Fetch(context.Context) (*sources.Payload, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func (s *stubRegistry) Latest(ctx context.Context) *sources.Payload {
	p, err := s.Fetch(ctx)
	if err != nil {
		return orcid.Fallback("2024-05-01T12:00:00.000Z", err)
	}
	return p
}

func (s *stubRegistry) Exchange(context.Context, string, string) (*orcid.Token, error) {
	return nil, errors.New("not used")
}

func livePayload() *sources.Payload {
	return &sources.Payload{
		Meta: &sources.Meta{
			FetchedAt:   "2024-05-01T12:00:00.000Z",
			ORCIDID:     "0000-0002-1825-0097",
			TotalGroups: ptr.Int(1),
			Source:      orcid.FeedSourceORCID,
		},
		Entries: []any{entries.Entry{
			ID:     "issn-1234-5678",
			Name:   "Journal of Tests",
			Years:  []int{2023},
			Source: entries.SourceRemote,
		}},
	}
}

func execute(t *testing.T, registry application.Registry, format string, args ...string) (string, error) {
	t.Helper()
	app := &application.Mock{
		RegistryFunc:     func() (application.Registry, error) { return registry, nil },
		OutputFormatFunc: func() string { return format },
	}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFetchJSON(t *testing.T) {
	out, err := execute(t, &stubRegistry{payload: livePayload()}, "json")
	require.NoError(t, err)

	var doc struct {
		Meta    map[string]any   `json:"meta"`
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "orcid", doc.Meta["source"])
	assert.Equal(t, float64(1), doc.Meta["totalGroups"])
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "issn-1234-5678", doc.Entries[0]["id"])
}

func TestFetchFailure(t *testing.T) {
	registry := &stubRegistry{err: errors.NewConfigError("orcid", "missing client credentials", nil)}

	t.Run("strict", func(t *testing.T) {
		_, err := execute(t, registry, "json")
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))
	})

	t.Run("fallback", func(t *testing.T) {
		out, err := execute(t, registry, "json", "--fallback")
		require.NoError(t, err)

		var doc struct {
			Meta    map[string]any `json:"meta"`
			Entries []any          `json:"entries"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, orcid.FeedSourceFallback, doc.Meta["source"])
		assert.Contains(t, doc.Meta["error"], "missing client credentials")
		assert.NotNil(t, doc.Entries)
		assert.Empty(t, doc.Entries)
	})
}

func TestFetchTable(t *testing.T) {
	out, err := execute(t, &stubRegistry{payload: livePayload()}, "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Journal of Tests")
	assert.Contains(t, out, "2023")
}

func TestFetchWritesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.yaml")
	_, err := execute(t, &stubRegistry{payload: livePayload()}, "json", "--out", path)
	require.NoError(t, err)

	payload, err := local.New(local.WithPath(path)).Fetch(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, payload.Len())
	assert.Equal(t, "0000-0002-1825-0097", payload.Meta.ORCIDID)
}

func TestEntries(t *testing.T) {
	p := &sources.Payload{Entries: []any{
		map[string]any{"name": "Cell"},
		"not an object",
	}}
	list := Entries(p)
	require.Len(t, list, 1)
	assert.Equal(t, "cell", list[0].ID)
	assert.Equal(t, entries.SourceRemote, list[0].Source)
}
