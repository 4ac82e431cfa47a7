package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/peerreviews/pkg/constants"
	"github.com/agentstation/peerreviews/pkg/errors"
	"github.com/agentstation/peerreviews/pkg/logging"
)

// ReadBody reads and closes a response body, returning an APIError for
// non-2xx statuses. Bodies are capped at constants.MaxResponseBytes.
func ReadBody(resp *http.Response, upstream string) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug().Err(err).Str("upstream", upstream).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxResponseBytes))
	if err != nil {
		return nil, errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		endpoint := ""
		if resp.Request != nil && resp.Request.URL != nil {
			endpoint = resp.Request.URL.String()
		}
		return body, &errors.APIError{
			Upstream:   upstream,
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    summarize(body, resp.Status),
		}
	}
	return body, nil
}

// DecodeResponse decodes a 2xx JSON response into target.
func DecodeResponse(resp *http.Response, upstream string, target any) error {
	body, err := ReadBody(resp, upstream)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", upstream+" response", err)
	}
	return nil
}

func summarize(body []byte, status string) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	if len(msg) > 200 {
		msg = msg[:200] + "…"
	}
	return msg
}
