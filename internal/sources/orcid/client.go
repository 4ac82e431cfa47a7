// Package orcid builds the peer-review feed from the ORCID registry.
//
// The client authenticates with the client-credentials grant, reads
// /{orcid}/peer-reviews and aggregates the peer-review groups into entries.
// It also performs the authorization-code exchange used by the OAuth callback.
package orcid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/agentstation/peerreviews/internal/transport"
	"github.com/agentstation/peerreviews/internal/utils/ptr"
	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/logging"
	"github.com/agentstation/peerreviews/pkg/sources"
)

const upstream = "orcid"

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Feed sources recorded in payload meta.
const (
	FeedSourceORCID    = "orcid"
	FeedSourceFallback = "fallback"
)

// Client reads peer reviews from ORCID.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *transport.RateLimiter
	now        func() time.Time

	tokensOnce sync.Once
	tokens     oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for both token and API requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimiter replaces the default upstream limiter.
func WithRateLimiter(limiter *transport.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithClock sets the clock used for fetchedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an ORCID client. Configuration is checked per call so that a
// partially configured client still serves the fallback feed.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg.withDefaults(),
		httpClient: &http.Client{Timeout: constants.DefaultHTTPTimeout},
		limiter:    transport.NewRateLimiter(constants.UpstreamRatePerSecond, constants.UpstreamBurst),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// ID returns sources.ORCIDID.
func (c *Client) ID() sources.ID {
	return sources.ORCIDID
}

// Fetch reads and aggregates the peer reviews, returning the feed payload.
func (c *Client) Fetch(ctx context.Context) (*sources.Payload, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	reviews, err := c.PeerReviews(ctx)
	if err != nil {
		return nil, err
	}

	aggregated := Aggregate(reviews)
	list := make([]any, len(aggregated))
	for i, e := range aggregated {
		list[i] = e
	}

	logging.FromContext(ctx).Debug().
		Str("orcid_id", c.cfg.ORCIDID).
		Int("groups", len(reviews.Groups)).
		Int("entries", len(list)).
		Msg("Aggregated ORCID peer reviews")

	return &sources.Payload{
		Meta: &sources.Meta{
			FetchedAt:   c.timestamp(),
			ORCIDID:     c.cfg.ORCIDID,
			TotalGroups: ptr.Int(len(reviews.Groups)),
			Source:      FeedSourceORCID,
		},
		Entries: list,
	}, nil
}

// Latest returns the feed envelope. Any failure produces the fallback
// envelope carrying the error message and no entries.
func (c *Client) Latest(ctx context.Context) *sources.Payload {
	p, err := c.Fetch(ctx)
	if err == nil {
		return p
	}
	logging.FromContext(ctx).Warn().Err(err).Msg("ORCID fetch failed, serving fallback feed")
	return Fallback(c.timestamp(), err)
}

// Fallback builds the envelope served when the registry cannot be read.
func Fallback(fetchedAt string, err error) *sources.Payload {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &sources.Payload{
		Meta: &sources.Meta{
			FetchedAt: fetchedAt,
			Source:    FeedSourceFallback,
			Error:     msg,
		},
		Entries: []any{},
	}
}

// PeerReviews performs the authenticated read of /{orcid}/peer-reviews.
func (c *Client) PeerReviews(ctx context.Context) (*PeerReviews, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	tokens := c.tokenSource(ctx)
	client := transport.New(upstream,
		transport.WithHTTPClient(c.httpClient),
		transport.WithRateLimiter(c.limiter),
		transport.WithAuth(&transport.TokenSourceAuth{Upstream: upstream, Source: tokens}),
	)

	endpoint := c.cfg.BaseURL + "/" + url.PathEscape(c.cfg.ORCIDID) + "/peer-reviews"
	resp, err := client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	body, err := transport.ReadBody(resp, upstream)
	if err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			var msg upstreamMessage
			if json.Unmarshal(body, &msg) == nil && msg.text() != "" {
				apiErr.Message = msg.text()
			} else {
				apiErr.Message = "ORCID peer review fetch failed"
			}
		}
		return nil, err
	}

	var reviews PeerReviews
	if err := json.Unmarshal(body, &reviews); err != nil {
		// A valid non-object body carries no groups.
		if json.Valid(body) {
			return &PeerReviews{}, nil
		}
		return nil, errors.WrapParse("json", "orcid peer-reviews", err)
	}
	return &reviews, nil
}

// tokenSource returns the shared client-credentials source. Tokens are reused
// until they expire; refreshes outlive the request that triggered them.
func (c *Client) tokenSource(ctx context.Context) oauth2.TokenSource {
	c.tokensOnce.Do(func() {
		cc := &clientcredentials.Config{
			ClientID:     c.cfg.ClientID,
			ClientSecret: c.cfg.ClientSecret,
			TokenURL:     c.cfg.TokenURL,
			Scopes:       []string{c.cfg.Scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		base := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, c.httpClient)
		c.tokens = cc.TokenSource(base)
	})
	return c.tokens
}

func (c *Client) timestamp() string {
	return c.now().UTC().Format(timestampLayout)
}
