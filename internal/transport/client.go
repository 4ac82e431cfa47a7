// Package transport is the HTTP client used for upstream calls: the ORCID
// registry and remote JSON feeds. It applies authentication, throttles
// requests and turns non-2xx responses into typed errors.
package transport

import (
	"context"
	"net/http"

	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http     *http.Client
	auth     Authenticator
	limiter  *RateLimiter
	upstream string
}

// Option configures a Client.
type Option func(*Client)

// WithAuth sets the authenticator.
func WithAuth(auth Authenticator) Option {
	return func(c *Client) {
		if auth != nil {
			c.auth = auth
		}
	}
}

// WithRateLimiter throttles requests through limiter.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a new transport client for the named upstream.
func New(upstream string, opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: DefaultHTTPTimeout},
		auth:     &NoAuth{},
		upstream: upstream,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upstream returns the upstream name used in errors.
func (c *Client) Upstream() string {
	return c.upstream
}

// Do performs an HTTP request with throttling and authentication applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.WrapResource("throttle", "request", req.URL.String(), err)
		}
	}

	if err := c.auth.Apply(req); err != nil {
		return nil, err
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewTimeoutError(req.Method+" "+req.URL.String(), "", ctx.Err().Error())
		}
		return nil, &errors.APIError{
			Upstream: c.upstream,
			Endpoint: req.URL.String(),
			Message:  "request failed",
			Err:      err,
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests && c.limiter != nil {
		c.limiter.Backoff(retryAfter(resp.Header))
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(ctx, req)
}

// GetJSON performs a GET request and decodes a 2xx JSON body into target.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, c.upstream, target)
}
