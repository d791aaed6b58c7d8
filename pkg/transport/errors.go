package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-success HTTP response from the API
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Title      string
	Detail     string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("API error (status %d) on %s %s: %s", e.StatusCode, e.Method, e.Path, msg)
}

// DecodeError is a success response whose body is not the expected JSON
type DecodeError struct {
	Method string
	Path   string
	Body   []byte
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to unmarshal response from %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying json error
func (e *DecodeError) Unwrap() error { return e.Err }

// errorResponse is Replicate's problem document
type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func parseError(method, path string, statusCode int, body []byte) error {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Body:       string(body),
	}
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Title = errResp.Title
		apiErr.Detail = errResp.Detail
	}
	return apiErr
}

// StatusCode returns the HTTP status of an APIError anywhere in err's chain, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err indicates a resource was not found (404)
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether err indicates invalid or missing credentials (401)
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsPaymentRequired reports whether err is a billing problem (402)
func IsPaymentRequired(err error) bool {
	return StatusCode(err) == http.StatusPaymentRequired
}

// IsRateLimited reports whether err indicates throttling (429)
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsDecode reports whether err is a malformed response body
func IsDecode(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}
