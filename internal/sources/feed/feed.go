// Package feed reads a remote {meta, entries} JSON feed over HTTP, such as the
// deployed /api/peer-reviews/latest endpoint.
package feed

import (
	"context"

	"github.com/agentstation/peerreviews/internal/transport"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/sources"
)

// Source fetches a remote feed.
type Source struct {
	url    string
	client *transport.Client
}

// New creates a feed source for url. Without a client a default transport
// client is used.
func New(url string, client *transport.Client) *Source {
	if client == nil {
		client = transport.New("feed")
	}
	return &Source{url: url, client: client}
}

// ID returns sources.RemoteID.
func (s *Source) ID() sources.ID {
	return sources.RemoteID
}

// URL returns the feed URL.
func (s *Source) URL() string {
	return s.url
}

// Fetch performs the GET and decodes the body. Non-2xx statuses are returned
// as *errors.APIError.
func (s *Source) Fetch(ctx context.Context) (*sources.Payload, error) {
	if s.url == "" {
		return nil, errors.NewConfigError("feed", "feed URL is required", nil)
	}

	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	body, err := transport.ReadBody(resp, s.client.Upstream())
	if err != nil {
		return nil, err
	}

	payload, err := sources.Decode(body)
	if err != nil {
		return nil, errors.WrapResource("decode", "feed", s.url, err)
	}
	return payload, nil
}
