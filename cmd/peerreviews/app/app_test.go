package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peerreviews"
	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/cmd/peerreviews/cmd/validate"
)

func newTestApp(t *testing.T, manual string) *App {
	t.Helper()
	isolate(t)
	if manual != "" {
		t.Setenv(EnvManualPath, manual)
	}
	a, err := New("1.0.0", "abc123", "2024-01-01", "test")
	require.NoError(t, err)
	return a
}

func writeManual(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peer-reviews.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entries": [{"name": "Nature", "years": [2021]}]}`), 0o644))
	return path
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	a := newTestApp(t, "")

	assert.Equal(t, "1.0.0", a.Version())
	assert.Equal(t, "abc123", a.Commit())
	assert.Equal(t, "2024-01-01", a.Date())
	assert.Equal(t, "test", a.BuiltBy())
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Config())
	assert.Empty(t, a.OutputFormat())
}

// TestApp_Client_ThreadSafe verifies concurrent Client() calls share one instance.
func TestApp_Client_ThreadSafe(t *testing.T) {
	a := newTestApp(t, writeManual(t))

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]peerreviews.Client, goroutines)
	errs := make([]error, goroutines)

	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = a.Client()
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}

	list := results[0].Entries()
	require.Len(t, list, 1)
	assert.Equal(t, "Nature", list[0].Name)
}

// TestApp_Registry_Singleton verifies that Registry() returns the same instance.
func TestApp_Registry_Singleton(t *testing.T) {
	a := newTestApp(t, "")

	r1, err := a.Registry()
	require.NoError(t, err)
	r2, err := a.Registry()
	require.NoError(t, err)
	assert.Same(t, r1, r2)

	// Missing credentials surface as the fallback envelope, not a panic
	payload := r1.Latest(t.Context())
	require.NotNil(t, payload.Meta)
	assert.Equal(t, "fallback", payload.Meta.Source)
	assert.NotEmpty(t, payload.Meta.Error)
}

// TestApp_WithClient verifies an injected client is used as-is.
func TestApp_WithClient(t *testing.T) {
	isolate(t)
	injected, err := peerreviews.New()
	require.NoError(t, err)

	a, err := New("dev", "", "", "", WithClient(injected))
	require.NoError(t, err)

	got, err := a.Client()
	require.NoError(t, err)
	assert.Same(t, injected, got)
}

func TestApp_Execute(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		a := newTestApp(t, "")
		assert.NoError(t, a.Execute(t.Context(), []string{"version"}))
	})

	t.Run("invalid format", func(t *testing.T) {
		a := newTestApp(t, "")
		err := a.Execute(t.Context(), []string{"version", "-o", "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("validate configured dataset", func(t *testing.T) {
		a := newTestApp(t, writeManual(t))
		assert.NoError(t, a.Execute(t.Context(), []string{"validate", "-o", "json"}))
	})

	t.Run("validate reports violations", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"entries": [{"years": ["soon"]}]}`), 0o644))

		a := newTestApp(t, "")
		err := a.Execute(t.Context(), []string{"validate", bad, "-o", "json"})
		assert.ErrorIs(t, err, validate.ErrInvalid)
	})

	t.Run("flags update logging", func(t *testing.T) {
		a := newTestApp(t, "")
		require.NoError(t, a.Execute(t.Context(), []string{"version", "--log-level", "error"}))
		assert.Equal(t, "error", a.Config().LogLevel)
		assert.Equal(t, "error", a.Logger().GetLevel().String())
	})
}

func TestApp_Shutdown(t *testing.T) {
	a := newTestApp(t, writeManual(t))
	assert.NoError(t, a.Shutdown(t.Context()))

	c, err := a.Client()
	require.NoError(t, err)
	require.NoError(t, c.AutoUpdatesOn())
	assert.NoError(t, a.Shutdown(t.Context()))
}

var _ application.Application = (*App)(nil)
