package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig signals missing or malformed configuration.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidSchema signals an invalid index definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrMissingQuery signals a query specification without a query string.
	ErrMissingQuery = errors.New("query is required")
	// ErrGraphQuery signals errors reported by the content graph.
	ErrGraphQuery = errors.New("content graph query failed")
	// ErrTransformFailed signals a transform that returned an error or panicked.
	ErrTransformFailed = errors.New("transform failed")
	// ErrIndexNotFound signals a missing remote index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrServiceError signals a non-2xx response from the search service.
	ErrServiceError = errors.New("search service error")
)

// APIError is a failed search service call.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(string(e.Body))
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d: %s: %s", ErrServiceError.Error(), e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrServiceError.Error(), e.StatusCode, msg)
}

// Is reports 404 responses as ErrIndexNotFound in addition to ErrServiceError.
func (e *APIError) Is(target error) bool {
	return target == ErrIndexNotFound && e.StatusCode == 404
}

func (e *APIError) Unwrap() error { return ErrServiceError }

// GraphError is one error entry reported by the content graph.
type GraphError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// GraphQueryError wraps ErrGraphQuery with the reported errors.
type GraphQueryError struct {
	Errors []GraphError
}

func (e *GraphQueryError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return fmt.Sprintf("%s: %s", ErrGraphQuery.Error(), strings.Join(msgs, "; "))
}

func (e *GraphQueryError) Unwrap() error { return ErrGraphQuery }
