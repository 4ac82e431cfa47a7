// Package constants provides shared constants used throughout peerreviews:
// timeouts, limits, file permissions and upstream defaults that must agree
// across the CLI, the server and the source loaders.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for upstream HTTP requests
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// UpdateContextTimeout bounds a single fetch-and-merge cycle
	UpdateContextTimeout = 2 * time.Minute

	// DefaultUpdateInterval is the default interval between automatic updates
	DefaultUpdateInterval = 1 * time.Hour

	// ShutdownTimeout is how long the server waits for in-flight requests
	ShutdownTimeout = 10 * time.Second

	// WatchDebounce coalesces bursts of filesystem events
	WatchDebounce = 250 * time.Millisecond
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxSlugLength is the maximum length of a generated entry id
	MaxSlugLength = 120

	// MaxResponseBytes caps upstream response bodies
	MaxResponseBytes = 10 << 20

	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 100
)

// Rate limiting constants
const (
	// UpstreamRatePerSecond is the sustained request rate toward ORCID
	UpstreamRatePerSecond = 8

	// UpstreamBurst is the token bucket burst toward ORCID
	UpstreamBurst = 4
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for the cached ORCID feed
	CacheTTL = 5 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// ORCID defaults
const (
	// DefaultORCIDBaseURL is the member API root for record reads
	DefaultORCIDBaseURL = "https://api.orcid.org/v3.0"

	// DefaultORCIDTokenURL is the OAuth token endpoint
	DefaultORCIDTokenURL = "https://orcid.org/oauth/token"

	// DefaultORCIDScope is the client-credentials scope for public reads
	DefaultORCIDScope = "/read-public"
)

// Path constants
const (
	// DefaultManualPath is the default location of the manual dataset
	DefaultManualPath = "data/peer-reviews.json"

	// DefaultConfigFile is the default config file name in the home directory
	DefaultConfigFile = ".peerreviews"
)
