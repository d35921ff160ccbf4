package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport marks failures where no backend response was received.
	ErrTransport = errors.New("backend transport failure")
	// ErrUnauthorized marks a 401 answer. The session has already been cleared
	// by the time a caller sees it.
	ErrUnauthorized = errors.New("unauthorized")
)

// TransportError wraps a request that could not complete.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match any TransportError.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// APIError is a response the backend answered with a failure, either through
// a non-2xx status or a success:false envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 APIError.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusOf returns the backend status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnavailable reports whether err means the backend could not give a
// usable answer: no response at all, or a server-side failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrTransport) || StatusOf(err) >= http.StatusInternalServerError
}
