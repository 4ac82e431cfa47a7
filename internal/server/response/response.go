// Package response provides the JSON envelope used by the API server.
// Envelope endpoints return {"data": ..., "error": null} on success and
// {"data": null, "error": {...}} on failure. The feed and OAuth endpoints
// mirror their upstream shapes and are written with Raw instead.
package response

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agentstation/peerreviews/pkg/errors"
)

// Response is the API envelope.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error describes a failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes an envelope with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	Raw(w, status, resp)
}

// Raw writes any value as JSON with the given status code.
func Raw(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Headers are already sent; nothing useful can be done on failure.
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// MethodNotAllowed writes a 405 error response listing the allowed methods.
func MethodNotAllowed(w http.ResponseWriter, method string, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	JSON(w, http.StatusMethodNotAllowed, Fail(
		"METHOD_NOT_ALLOWED",
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter, message string) {
	JSON(w, http.StatusTooManyRequests, Fail(
		"RATE_LIMITED",
		"Rate limit exceeded",
		message,
	))
}

// InternalError writes a 500 error response without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// BadGateway writes a 502 error response.
func BadGateway(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadGateway, Fail(
		"BAD_GATEWAY",
		"Upstream request failed",
		message,
	))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(
		"SERVICE_UNAVAILABLE",
		"Service unavailable",
		message,
	))
}

// ErrorFromType maps typed errors to HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		notFound   *errors.NotFoundError
		validation *errors.ValidationError
		config     *errors.ConfigError
		api        *errors.APIError
	)
	switch {
	case errors.As(err, &notFound):
		NotFound(w, notFound.Error(), "")
	case errors.As(err, &validation):
		BadRequest(w, validation.Error(), "")
	case errors.As(err, &config):
		ServiceUnavailable(w, config.Error())
	case errors.As(err, &api):
		if api.StatusCode >= 500 || api.StatusCode == 0 {
			BadGateway(w, api.Message)
		} else {
			BadRequest(w, api.Error(), "")
		}
	default:
		InternalError(w, err)
	}
}
