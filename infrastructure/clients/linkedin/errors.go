package linkedin

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure taxonomy of the REST surface. Nothing is retried automatically.
var (
	ErrTokenExpired    = errors.New("access token expired or revoked, run setup to re-authorize")
	ErrPermissionGated = errors.New("feature requires elevated access")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPayload  = errors.New("request payload rejected")
	ErrRateLimited     = errors.New("rate limited, wait and retry")
	ErrServer          = errors.New("linkedin server error")
	ErrRequestFailed   = errors.New("request failed")
	ErrMalformedBody   = errors.New("malformed response body")
	ErrTransport       = errors.New("linkedin unreachable")
)

const maxErrorBody = 512

// APIError is a non-2xx response. Use errors.Is against the sentinels above.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("linkedin %s %s: %d %s: %s", e.Method, e.Endpoint, e.StatusCode, e.kind, e.Body)
}

func (e *APIError) Unwrap() error { return e.kind }

// classify maps a status code to its sentinel. gated marks endpoints where a
// 403 means the app lacks an elevated permission rather than a plain denial.
func classify(status int, gated bool) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrTokenExpired
	case status == http.StatusForbidden && gated:
		return ErrPermissionGated
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusUnprocessableEntity:
		return ErrInvalidPayload
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrRequestFailed
	}
}

// NewAPIError classifies a failed response; gated marks endpoints behind an elevated permission.
func NewAPIError(method, endpoint string, status int, body []byte, gated bool) *APIError {
	text := string(body)
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return &APIError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Body:       text,
		kind:       classify(status, gated),
	}
}
