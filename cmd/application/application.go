// Package application provides the application interface for peerreviews commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            _, err = client.Update(cmd.Context())
//	            return err
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ClientFunc: func() (peerreviews.Client, error) {
//	        return testClient, nil
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/peerreviews"
	"github.com/agentstation/peerreviews/internal/sources/orcid"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Registry is the ORCID side of the application: the live feed and the
// OAuth code exchange. *orcid.Client implements it.
type Registry interface {
	// Fetch reads the live feed, returning the upstream error on failure.
	Fetch(ctx context.Context) (*sources.Payload, error)
	// Latest returns the feed envelope, falling back on failure.
	Latest(ctx context.Context) *sources.Payload
	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code, redirectURI string) (*orcid.Token, error)
}

// Application provides what commands and the server need.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the shared peer-review client (lazy-initialized).
	Client() (peerreviews.Client, error)

	// Registry returns the ORCID registry client.
	Registry() (Registry, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
