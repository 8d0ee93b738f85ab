package confluence

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid confluence client configuration")
	// ErrInvalidRequest is matched by every ValidationError
	ErrInvalidRequest = errors.New("invalid confluence request")
	// ErrUnresolvedPath indicates a request path still contains a placeholder
	ErrUnresolvedPath = errors.New("request path contains unresolved placeholder")
	// ErrTransport indicates the HTTP round trip itself failed
	ErrTransport = errors.New("confluence transport failure")
	// ErrDecode indicates a success response could not be decoded
	ErrDecode = errors.New("failed to decode confluence response")
)

// ValidationError is returned when a request cannot be built from its options.
// It is raised before any network activity.
type ValidationError struct {
	Request string
	Field   string
	Reason  string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s request: %s: %s", e.Request, e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidRequest
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func invalid(request, field, reason string) error {
	return &ValidationError{Request: request, Field: field, Reason: reason}
}

// RequestError represents a response with status code >= 300
type RequestError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("confluence API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *RequestError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *RequestError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsConflict checks if the error indicates a version conflict on update
func (e *RequestError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}
