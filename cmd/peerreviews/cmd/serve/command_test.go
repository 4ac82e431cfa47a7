package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peerreviews/cmd/application"
	"github.com/agentstation/peerreviews/internal/server"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "8080", want: 8080},
		{in: "1", want: 1},
		{in: "65535", want: 65535},
		{in: "0", wantErr: true},
		{in: "65536", wantErr: true},
		{in: "http", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePort(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConfig(t *testing.T) {
	defaults := server.DefaultConfig()

	tests := []struct {
		name     string
		args     []string
		settings Settings
		env      map[string]string
		check    func(t *testing.T, cfg server.Config)
		wantErr  bool
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg server.Config) {
				assert.Equal(t, defaults, cfg)
			},
		},
		{
			name: "flags",
			args: []string{"--port", "9000", "--prefix", "/v2", "--rate-limit", "0", "--cache-ttl", "1m", "--write-timeout", "5s"},
			check: func(t *testing.T, cfg server.Config) {
				assert.Equal(t, 9000, cfg.Port)
				assert.Equal(t, "/v2", cfg.PathPrefix)
				assert.Equal(t, 0, cfg.RateLimit)
				assert.Equal(t, time.Minute, cfg.CacheTTL)
				assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
			},
		},
		{
			name:     "configured origins",
			settings: Settings{AllowedOrigins: []string{"https://example.com"}},
			check: func(t *testing.T, cfg server.Config) {
				assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins)
			},
		},
		{
			name:     "flag origins win",
			args:     []string{"--cors-origins", "https://a.test,https://b.test"},
			settings: Settings{AllowedOrigins: []string{"https://example.com"}},
			check: func(t *testing.T, cfg server.Config) {
				assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.AllowedOrigins)
			},
		},
		{
			name: "environment",
			args: []string{"--port", "9000"},
			env:  map[string]string{"HTTP_PORT": "7000", "HTTP_HOST": "0.0.0.0"},
			check: func(t *testing.T, cfg server.Config) {
				assert.Equal(t, 7000, cfg.Port)
				assert.Equal(t, "0.0.0.0", cfg.Host)
			},
		},
		{
			name:    "bad environment port",
			env:     map[string]string{"HTTP_PORT": "none"},
			wantErr: true,
		},
		{
			name:    "port out of range",
			args:    []string{"--port", "70000"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HTTP_PORT", "")
			t.Setenv("HTTP_HOST", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cmd := NewCommand(&application.Mock{}, tt.settings)
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, err := parseConfig(cmd, tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
