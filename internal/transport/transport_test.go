package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	pkgerrors "github.com/agentstation/peerreviews/pkg/errors"
)

type staticTokens struct {
	token *oauth2.Token
	err   error
	calls atomic.Int32
}

func (s *staticTokens) Token() (*oauth2.Token, error) {
	s.calls.Add(1)
	return s.token, s.err
}

func TestBearerAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, (&BearerAuth{Token: "abc"}).Apply(req))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))

	empty := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, (&BearerAuth{}).Apply(empty))
	assert.Empty(t, empty.Header.Get("Authorization"))
}

func TestTokenSourceAuth(t *testing.T) {
	src := &staticTokens{token: &oauth2.Token{AccessToken: "tok", TokenType: "Bearer"}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, (&TokenSourceAuth{Upstream: "orcid", Source: src}).Apply(req))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	failing := &staticTokens{err: errors.New("invalid_client")}
	err := (&TokenSourceAuth{Upstream: "orcid", Source: failing}).Apply(req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("test", WithAuth(&BearerAuth{Token: "tok"}))
	var out struct{ OK bool }
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, &out))
	assert.True(t, out.OK)
}

func TestClientNon2xx(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, pkgerrors.IsUnauthorized},
		{http.StatusTooManyRequests, pkgerrors.IsRateLimited},
		{http.StatusBadGateway, pkgerrors.IsUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			var out map[string]any
			err := New("test").GetJSON(context.Background(), srv.URL, &out)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())

			var apiErr *pkgerrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Message)
		})
	}
}

func TestClientInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{`))
	}))
	defer srv.Close()

	var out map[string]any
	err := New("test").GetJSON(context.Background(), srv.URL, &out)
	var parseErr *pkgerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New("test").Get(context.Background(), url)
	var apiErr *pkgerrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
}

func TestRateLimiterBackoff(t *testing.T) {
	rl := NewRateLimiter(1000, 10)
	assert.True(t, rl.Allow())

	rl.Backoff(time.Hour)
	assert.False(t, rl.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

func TestClientRecords429Backoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	rl := NewRateLimiter(1000, 10)
	resp, err := New("test", WithRateLimiter(rl)).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.False(t, rl.Allow())
}
