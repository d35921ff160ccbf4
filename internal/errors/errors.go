package errors

import (
	"errors"
	"net/http"

	"sphere/internal/apiclient"
)

var (
	// ErrSessionRequired is returned when a request carries no portal session.
	ErrSessionRequired = errors.New("session required")
	// ErrInvalidRequest is returned when a request body or parameter cannot be used.
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps portal and backend errors to HTTP errors.
// Backend messages are passed through so screens can show them as-is.
func MapErrorToHTTP(err error) *HTTPError {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, ErrSessionRequired):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "SESSION_REQUIRED")
	case errors.Is(err, ErrInvalidRequest):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
	case errors.Is(err, apiclient.ErrTransport):
		return NewHTTPError(http.StatusBadGateway, "backend unavailable", "BACKEND_UNAVAILABLE")
	case errors.As(err, &apiErr):
		return mapAPIError(apiErr)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

func mapAPIError(err *apiclient.APIError) *HTTPError {
	switch {
	case err.StatusCode == http.StatusUnauthorized:
		return NewHTTPError(http.StatusUnauthorized, err.Message, "UNAUTHORIZED")
	case err.StatusCode == http.StatusForbidden:
		return NewHTTPError(http.StatusForbidden, err.Message, "FORBIDDEN")
	case err.StatusCode == http.StatusNotFound:
		return NewHTTPError(http.StatusNotFound, err.Message, "NOT_FOUND")
	case err.StatusCode == http.StatusUnprocessableEntity, err.StatusCode == http.StatusBadRequest:
		return NewHTTPError(err.StatusCode, err.Message, "VALIDATION_FAILED")
	case err.StatusCode >= 500:
		return NewHTTPError(http.StatusBadGateway, err.Message, "BACKEND_ERROR")
	case err.StatusCode < 400:
		// success:false envelope on a 2xx response
		return NewHTTPError(http.StatusBadGateway, err.Message, "BACKEND_REJECTED")
	default:
		return NewHTTPError(err.StatusCode, err.Message, "BACKEND_REJECTED")
	}
}
