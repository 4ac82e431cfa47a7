package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/peerreviews/internal/config"
	"github.com/agentstation/peerreviews/internal/sources/orcid"
	"github.com/agentstation/peerreviews/pkg/constants"
)

// Environment variables read by the CLI. Config file keys use the same
// names in lower case.
const (
	EnvORCIDClientID     = "ORCID_CLIENT_ID"
	EnvORCIDClientSecret = "ORCID_CLIENT_SECRET"
	EnvORCIDBaseURL      = "ORCID_BASE_URL"
	EnvORCIDScope        = "ORCID_PEER_REVIEW_SCOPE"
	EnvORCIDRedirectURI  = "ORCID_REDIRECT_URI"
	EnvAllowedOrigin     = "PEER_REVIEWS_ALLOWED_ORIGIN"
	EnvManualPath        = "PEER_REVIEWS_MANUAL_PATH"
	EnvFeedURL           = "PEER_REVIEWS_FEED_URL"
	EnvAutoUpdates       = "PEER_REVIEWS_AUTO_UPDATES"
	EnvAutoUpdateEvery   = "PEER_REVIEWS_AUTO_UPDATE_INTERVAL"
)

// orcidIDKeys are the accepted names for the ORCID iD, most specific first.
var orcidIDKeys = []string{"ORCID_PEER_REVIEWS_ORCID", "ORCID_ID", "ORCID_PROFILE_ID"}

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Sources
	ManualPath         string
	FeedURL            string
	AutoUpdatesEnabled bool
	AutoUpdateInterval time.Duration

	// ORCID registry
	ORCID orcid.Config

	// HTTP API
	AllowedOrigins []string

	// Logging configuration
	LogLevel    string // --log-level
	EnvLogLevel string // LOG_LEVEL
	LogFormat   string
	LogOutput   string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.peerreviews.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// .env files must be loaded before Viper binds the environment
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	keys := append([]string{
		EnvORCIDClientID, EnvORCIDClientSecret, EnvORCIDBaseURL, EnvORCIDScope,
		EnvORCIDRedirectURI, EnvAllowedOrigin, EnvManualPath, EnvFeedURL,
		EnvAutoUpdates, EnvAutoUpdateEvery,
	}, orcidIDKeys...)
	if err := config.BindEnv(keys...); err != nil {
		return nil, err
	}

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(constants.DefaultConfigFile)
	}

	// A missing config file is fine
	_ = viper.ReadInConfig()

	cfg := &Config{
		ConfigFile: viper.ConfigFileUsed(),

		ManualPath:         config.GetString(EnvManualPath),
		FeedURL:            config.GetString(EnvFeedURL),
		AutoUpdatesEnabled: viper.GetBool(EnvAutoUpdates),
		AutoUpdateInterval: viper.GetDuration(EnvAutoUpdateEvery),

		ORCID: orcid.Config{
			ClientID:     config.GetString(EnvORCIDClientID),
			ClientSecret: config.GetString(EnvORCIDClientSecret),
			ORCIDID:      config.FirstString(orcidIDKeys...),
			BaseURL:      config.GetString(EnvORCIDBaseURL),
			Scope:        config.GetString(EnvORCIDScope),
			RedirectURI:  config.GetString(EnvORCIDRedirectURI),
		},

		AllowedOrigins: config.StringList(EnvAllowedOrigin),

		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if cfg.ManualPath == "" {
		cfg.ManualPath = constants.DefaultManualPath
	}
	if cfg.AutoUpdateInterval <= 0 {
		cfg.AutoUpdateInterval = constants.DefaultUpdateInterval
	}

	return cfg, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env.local then .env. godotenv never overrides
// variables that are already set, so the process environment wins over
// .env.local, which wins over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
