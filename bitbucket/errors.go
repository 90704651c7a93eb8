package bitbucket

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid bitbucket configuration")
	// ErrUnauthorized matches API errors with status 401 or 403
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches API errors with status 404
	ErrNotFound = errors.New("resource not found")
	// ErrQueryInPath is returned when a request path carries its own query string
	ErrQueryInPath = errors.New("request path must not contain '?'")
)

// APIError is returned for every non-2xx response
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
	Detail     string
	ID         string
	// Key and Arguments are only set when the body used the key/message format
	Key       string
	Arguments map[string]any
	Body      string
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := fmt.Sprintf("bitbucket API error: status %d: %s", e.StatusCode, e.Message)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Is lets errors.Is match the status sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.IsNotFound()
	case ErrUnauthorized:
		return e.IsUnauthorized()
	}
	return false
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// FieldErrors returns the messages reported for a single request field
func (e *APIError) FieldErrors(name string) []string {
	return e.Fields[name]
}

// TransportError wraps failures below the HTTP layer: DNS, dial, TLS, timeouts
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// maxErrorBody bounds the body echoed by DeserializationError.Error
const maxErrorBody = 200

// DeserializationError reports a 2xx body that does not fit the requested shape.
type DeserializationError struct {
	Target reflect.Type
	Body   string
	Err    error
}

func (e *DeserializationError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return fmt.Sprintf("cannot decode response into %v: %v (body: %s)", e.Target, e.Err, strings.TrimSpace(body))
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}
