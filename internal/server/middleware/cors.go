package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSConfig allows any origin to read the feed and call the callback.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// CORS adds CORS headers and answers preflight requests with 204.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ",")
	headers := strings.Join(config.AllowedHeaders, ",")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := allowOrigin(r.Header.Get("Origin"), config.AllowedOrigins); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				if origin != "*" {
					w.Header().Add("Vary", "Origin")
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allowOrigin returns the value for Access-Control-Allow-Origin, or "" when
// the request origin is not allowed. A single configured origin is echoed
// as-is so static deployments work without an Origin header.
func allowOrigin(origin string, allowed []string) string {
	switch {
	case len(allowed) == 0 || slices.Contains(allowed, "*"):
		return "*"
	case len(allowed) == 1:
		return allowed[0]
	case origin != "" && slices.Contains(allowed, origin):
		return origin
	}
	return ""
}
