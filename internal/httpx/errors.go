// Package httpx provides typed HTTP errors and JSON response writers.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in the JSON error envelope.
const (
	CodeBadRequest          = "bad_request"
	CodeInvalidHeaderFormat = "invalid_header_format"
	CodeInternal            = "internal"
	CodeBadGateway          = "bad_gateway"
	CodeUnavailable         = "unavailable"
)

// HTTPError is an error that knows how to render itself as an HTTP response.
// Headers holds output headers written alongside the error body.
// CorrelationID, when set, is echoed in the error envelope.
type HTTPError struct {
	StatusCode    int            `json:"-"`
	Message       string         `json:"message"`
	Code          string         `json:"code"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Headers       http.Header    `json:"-"`
	Err           error          `json:"-"`
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// OutputHeaders returns the error's output header collection, allocating it on first use.
func (e *HTTPError) OutputHeaders() http.Header {
	if e.Headers == nil {
		e.Headers = make(http.Header)
	}
	return e.Headers
}

// BadRequest builds a 400 error with the given code and details.
func BadRequest(code, msg string, details map[string]any, err error) *HTTPError {
	if code == "" {
		code = CodeBadRequest
	}
	return &HTTPError{StatusCode: http.StatusBadRequest, Message: msg, Code: code, Details: details, Err: err}
}

// Internal builds a 500 error.
func Internal(msg string, err error) *HTTPError {
	return &HTTPError{StatusCode: http.StatusInternalServerError, Message: msg, Code: CodeInternal, Err: err}
}

// BadGateway builds a 502 error for a failed upstream dependency.
func BadGateway(msg string, err error) *HTTPError {
	return &HTTPError{StatusCode: http.StatusBadGateway, Message: msg, Code: CodeBadGateway, Err: err}
}

// ServiceUnavailable builds a 503 error.
func ServiceUnavailable(msg string) *HTTPError {
	return &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: msg, Code: CodeUnavailable}
}

// AsHTTPError converts any error into an *HTTPError. Errors that are not
// already typed become opaque 500s.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return Internal("internal server error", err)
}

// Is reports whether err is an *HTTPError with the given code.
func Is(err error, code string) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}
