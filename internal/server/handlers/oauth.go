package handlers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/agentstation/peerreviews/internal/server/response"
	"github.com/agentstation/peerreviews/internal/sources/orcid"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/logging"
)

// maxCallbackBody bounds the POST body of the OAuth callback.
const maxCallbackBody = 64 << 10

// Error codes returned by the OAuth callback.
const (
	codeConfigurationError  = "configuration_error"
	codeInvalidRequest      = "invalid_request"
	codeTokenExchangeFailed = "token_exchange_failed"
	codeTokenExchangeError  = "token_exchange_error"
)

// callbackError is the error body of the OAuth callback.
type callbackError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// HandleORCIDCallback handles GET|POST {prefix}/oauth/orcid/callback. The
// code comes from the query or the body; redirect_uri prefers the body.
func (h *Handlers) HandleORCIDCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	registry, err := h.app.Registry()
	if err != nil {
		h.writeCallbackError(w, r, err)
		return
	}

	query := r.URL.Query()
	body := callbackParams(r)

	code := query.Get("code")
	if code == "" {
		code = body.Get("code")
	}
	redirectURI := body.Get("redirect_uri")
	if redirectURI == "" {
		redirectURI = query.Get("redirect_uri")
	}

	token, err := registry.Exchange(r.Context(), code, redirectURI)
	if err != nil {
		h.writeCallbackError(w, r, err)
		return
	}

	response.Raw(w, http.StatusOK, token)
}

func (h *Handlers) writeCallbackError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Warn().Err(err).Msg("ORCID callback failed")

	var (
		config     *errors.ConfigError
		validation *errors.ValidationError
		exchange   *orcid.ExchangeError
		api        *errors.APIError
	)
	switch {
	case errors.As(err, &config):
		response.Raw(w, http.StatusInternalServerError, callbackError{
			Error:   codeConfigurationError,
			Message: config.Message,
		})
	case errors.As(err, &validation):
		response.Raw(w, http.StatusBadRequest, callbackError{
			Error:   codeInvalidRequest,
			Message: validation.Message,
		})
	case errors.As(err, &exchange):
		status := exchange.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		var details any
		if exchange.Details != nil {
			details = exchange.Details
		}
		response.Raw(w, status, callbackError{
			Error:   codeTokenExchangeFailed,
			Message: exchange.Message,
			Details: details,
		})
	case errors.As(err, &api):
		details := api.Message
		if api.Err != nil {
			details = api.Err.Error()
		}
		response.Raw(w, http.StatusBadGateway, callbackError{
			Error:   codeTokenExchangeError,
			Message: "Unable to complete the ORCID token exchange.",
			Details: details,
		})
	default:
		response.Raw(w, http.StatusBadGateway, callbackError{
			Error:   codeTokenExchangeError,
			Message: "Unable to complete the ORCID token exchange.",
			Details: err.Error(),
		})
	}
}

// callbackParams reads a JSON or form-encoded POST body. Anything else,
// including a malformed body, yields no parameters.
func callbackParams(r *http.Request) url.Values {
	if r.Method != http.MethodPost || r.Body == nil {
		return url.Values{}
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil || len(data) == 0 {
		return url.Values{}
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return url.Values{}
		}
		values := url.Values{}
		for key, value := range fields {
			if s, ok := value.(string); ok {
				values.Set(key, s)
			}
		}
		return values
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return url.Values{}
		}
		return values
	}
	return url.Values{}
}
