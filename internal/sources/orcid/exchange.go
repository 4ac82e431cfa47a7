package orcid

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/agentstation/peerreviews/pkg/errors"
)

// Token is the result of an authorization-code exchange: the token fields
// ORCID returns plus the time the exchange completed. Payload holds the
// complete token response, so fields without a typed counterpart survive
// serialization.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	Name         string `json:"name,omitempty"`
	ORCID        string `json:"orcid,omitempty"`
	ReceivedAt   string `json:"receivedAt"`

	Payload map[string]any `json:"-"`
}

// MarshalJSON writes the token response as received plus receivedAt.
func (t Token) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Payload)+8)
	maps.Copy(out, t.Payload)

	typed := map[string]string{
		"access_token":  t.AccessToken,
		"token_type":    t.TokenType,
		"refresh_token": t.RefreshToken,
		"scope":         t.Scope,
		"name":          t.Name,
		"orcid":         t.ORCID,
	}
	for k, v := range typed {
		if _, ok := out[k]; !ok && (v != "" || k == "access_token") {
			out[k] = v
		}
	}
	if _, ok := out["expires_in"]; !ok && t.ExpiresIn != 0 {
		out["expires_in"] = t.ExpiresIn
	}
	out["receivedAt"] = t.ReceivedAt
	return json.Marshal(out)
}

// ExchangeError reports a token endpoint that answered with an error status.
type ExchangeError struct {
	StatusCode int
	Message    string
	Details    map[string]any
	Err        error
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	return e.Message
}

// Unwrap implements errors.Unwrap.
func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// Exchange trades an OAuth authorization code for a token. redirectURI
// overrides the configured redirect URI when set. Missing credentials yield a
// ConfigError, a missing code a ValidationError, a rejected code an
// ExchangeError and a transport failure an APIError.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*Token, error) {
	if err := c.cfg.ValidateCredentials(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errors.NewValidationError("code", code, "missing OAuth authorization code")
	}
	if redirectURI == "" {
		redirectURI = c.cfg.RedirectURI
	}

	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	capture := &bodyCapture{base: c.httpClient.Transport}
	hc := &http.Client{Transport: capture, Timeout: c.httpClient.Timeout}
	tok, err := conf.Exchange(context.WithValue(ctx, oauth2.HTTPClient, hc), code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, exchangeError(re)
		}
		return nil, &errors.APIError{
			Upstream:   upstream,
			StatusCode: http.StatusBadGateway,
			Message:    "unable to complete the ORCID token exchange",
			Endpoint:   c.cfg.TokenURL,
			Err:        err,
		}
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		Scope:        extra(tok, "scope"),
		Name:         extra(tok, "name"),
		ORCID:        extra(tok, "orcid"),
		ReceivedAt:   c.timestamp(),
		Payload:      capture.fields(),
	}, nil
}

// bodyCapture keeps a copy of the token endpoint's response body.
type bodyCapture struct {
	base http.RoundTripper
	body []byte
}

func (b *bodyCapture) RoundTrip(req *http.Request) (*http.Response, error) {
	base := b.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	b.body = data
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

// fields decodes the captured body; a non-JSON body yields nil.
func (b *bodyCapture) fields() map[string]any {
	var out map[string]any
	if err := json.Unmarshal(b.body, &out); err != nil {
		return nil
	}
	return out
}

func exchangeError(re *oauth2.RetrieveError) *ExchangeError {
	details := map[string]any{}
	_ = json.Unmarshal(re.Body, &details)

	msg := re.ErrorDescription
	if msg == "" {
		msg = "ORCID token exchange failed"
	}
	return &ExchangeError{
		StatusCode: re.Response.StatusCode,
		Message:    msg,
		Details:    details,
		Err:        re,
	}
}

func extra(tok *oauth2.Token, key string) string {
	s, _ := tok.Extra(key).(string)
	return s
}
