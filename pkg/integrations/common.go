package integrations

import (
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single registry request so that one hung lookup
// cannot stall a whole run.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")

	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("malformed response")
)

// NewHTTPClient creates an HTTP client with the given timeout for registry requests.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
