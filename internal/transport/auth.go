package transport

import (
	"net/http"

	"golang.org/x/oauth2"

	"github.com/agentstation/peerreviews/pkg/errors"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) error {
	return nil
}

// BearerAuth sends a fixed bearer token.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) error {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
	return nil
}

// TokenSourceAuth sends a bearer token obtained from an OAuth2 token source,
// such as the ORCID client-credentials grant. Wrap the source in
// oauth2.ReuseTokenSource to avoid a token request per call.
type TokenSourceAuth struct {
	Upstream string
	Source   oauth2.TokenSource
}

// Apply implements the Authenticator interface for TokenSourceAuth.
func (a *TokenSourceAuth) Apply(req *http.Request) error {
	token, err := a.Source.Token()
	if err != nil {
		msg := "failed to obtain access token"
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorDescription != "" {
			msg = re.ErrorDescription
		} else if errors.As(err, &re) && re.ErrorCode != "" {
			msg = re.ErrorCode
		}
		return errors.NewAuthenticationError(a.Upstream, "client_credentials", msg, err)
	}
	token.SetAuthHeader(req)
	return nil
}
