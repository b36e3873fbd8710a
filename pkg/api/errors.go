package api

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeUnauthorized     ErrorType = "unauthorized"
	ErrorTypeForbidden        ErrorType = "forbidden"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"
	ErrorTypeTooManyRequests  ErrorType = "too_many_requests"
	ErrorTypeServerError      ErrorType = "server_error"
)

// Client-facing messages. Every unauthorized cause shares one message so a
// caller cannot tell a missing credential from a forged or expired one.
const (
	MessageUnauthorized    = "Not authorized to access this route"
	MessageForbidden       = "Your access level is unauthorized"
	MessageTooManyRequests = "Too many requests, please try again later."
	MessageStoreFailure    = "User store unavailable"
	MessageServerError     = "Internal server error"
)

// APIError is a structured error that is rendered as the failure envelope.
type APIError struct {
	Type    ErrorType
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Status returns the HTTP status code for the error type.
func (e *APIError) Status() int {
	switch e.Type {
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorTypeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Envelope returns the failure envelope for the error.
func (e *APIError) Envelope() ErrorResponse {
	return ErrorResponse{Success: false, Error: e.Message}
}

// NewUnauthorizedError creates the error returned for every failed
// authentication, whatever the underlying cause.
func NewUnauthorizedError() *APIError {
	return &APIError{Type: ErrorTypeUnauthorized, Message: MessageUnauthorized}
}

// NewForbiddenError creates the error returned when an authenticated
// caller's role is not permitted on a route.
func NewForbiddenError() *APIError {
	return &APIError{Type: ErrorTypeForbidden, Message: MessageForbidden}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

// NewMethodNotAllowedError creates an APIError for a known path requested
// with an unsupported method.
func NewMethodNotAllowedError(method, path string) *APIError {
	return &APIError{Type: ErrorTypeMethodNotAllowed, Message: fmt.Sprintf("Method %s not allowed on %s", method, path)}
}

// NewTooManyRequestsError creates an APIError for rate limiting.
func NewTooManyRequestsError() *APIError {
	return &APIError{Type: ErrorTypeTooManyRequests, Message: MessageTooManyRequests}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{Type: ErrorTypeServerError, Message: message}
}
