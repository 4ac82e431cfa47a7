package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peerreviews/internal/sources/local"
	pkgerrors "github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/sources"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFetchJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer-reviews.json")
	writeFile(t, path, `{"meta":{"manualUpdatedAt":"2024-01-10"},"entries":[{"name":"Nature","years":[2020]}]}`)

	src := local.New(local.WithPath(path))
	assert.Equal(t, sources.ManualID, src.ID())

	p, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())
	require.NotNil(t, p.Meta)
	assert.Equal(t, "2024-01-10", p.Meta.ManualUpdatedAt)
}

func TestFetchYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer-reviews.yaml")
	writeFile(t, path, `
meta:
  manualUpdatedAt: "2024-01-10"
entries:
  - name: Nature
    years: [2020, 2021]
  - name: Science
    aliases: [sci]
`)

	p, err := local.New(local.WithPath(path)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	first, ok := p.Entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Nature", first["name"])
}

func TestFetchMissingFile(t *testing.T) {
	src := local.New(local.WithPath(filepath.Join(t.TempDir(), "absent.json")))
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFetchMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	writeFile(t, path, `{"entries": [`)
	_, err := local.New(local.WithPath(path)).Fetch(context.Background())
	var parseErr *pkgerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestIsYAML(t *testing.T) {
	assert.True(t, local.IsYAML("a.yml"))
	assert.True(t, local.IsYAML("a.YAML"))
	assert.False(t, local.IsYAML("a.json"))
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer-reviews.json")
	writeFile(t, path, `{"entries":[]}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	src := local.New(local.WithPath(path), local.WithDebounce(10*time.Millisecond))
	go func() {
		done <- src.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, `{"entries":[{"name":"Nature"}]}`)

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	require.NoError(t, <-done)
}
