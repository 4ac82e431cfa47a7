package orcid

import (
	"strings"

	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
)

// Config holds the ORCID credentials and endpoints.
type Config struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	ORCIDID      string `mapstructure:"orcid_id" yaml:"orcid_id"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	TokenURL     string `mapstructure:"token_url" yaml:"token_url"`
	Scope        string `mapstructure:"scope" yaml:"scope"`
	RedirectURI  string `mapstructure:"redirect_uri" yaml:"redirect_uri"`
}

// withDefaults fills empty endpoints and scope.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultORCIDBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = constants.DefaultORCIDTokenURL
	}
	if c.Scope == "" {
		c.Scope = constants.DefaultORCIDScope
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// ValidateCredentials checks the client id and secret, in that order.
func (c Config) ValidateCredentials() error {
	if c.ClientID == "" {
		return errors.NewConfigError("orcid", "missing client id", nil)
	}
	if c.ClientSecret == "" {
		return errors.NewConfigError("orcid", "missing client secret", nil)
	}
	return nil
}

// Validate checks everything a peer-review read needs.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" || c.ORCIDID == "" {
		return errors.NewConfigError("orcid",
			"missing ORCID configuration: client id, client secret and ORCID iD are required", nil)
	}
	return nil
}
