// Package domain provides the canonical chat types and error taxonomy shared
// by the providers, agents and the HTTP surface.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyInput is returned when a question is missing or only whitespace.
// It is an invalid-request APIError so the HTTP layer answers 400 with its
// message.
var ErrEmptyInput = &APIError{
	Type:    ErrorTypeInvalidRequest,
	Message: "No input provided",
	Param:   "input",
}

// ErrEmptyOutput is returned when a pipeline stage answers with no text, so
// there is nothing to hand to the next stage. It is a server-class error.
var ErrEmptyOutput = &APIError{
	Type:       ErrorTypeServer,
	Message:    "model returned an empty answer",
	StatusCode: http.StatusBadGateway,
}

// ErrorType represents the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed or invalid request.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeAuthentication indicates an authentication failure.
	ErrorTypeAuthentication ErrorType = "authentication"

	// ErrorTypePermission indicates a permission/authorization failure.
	ErrorTypePermission ErrorType = "permission"

	// ErrorTypeNotFound indicates a resource was not found.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeRateLimit indicates rate limiting was triggered.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeOverloaded indicates the upstream service is overloaded.
	ErrorTypeOverloaded ErrorType = "overloaded"

	// ErrorTypeServer indicates an internal or upstream server error.
	ErrorTypeServer ErrorType = "server"

	// ErrorTypeContextLength indicates the context length was exceeded.
	ErrorTypeContextLength ErrorType = "context_length"
)

// ErrorCode provides additional specificity beyond the error type.
type ErrorCode string

const (
	ErrorCodeContextLengthExceeded ErrorCode = "context_length_exceeded"
	ErrorCodeRateLimitExceeded     ErrorCode = "rate_limit_exceeded"
	ErrorCodeInvalidAPIKey         ErrorCode = "invalid_api_key"
	ErrorCodeModelNotFound         ErrorCode = "model_not_found"
)

// APIError is a canonical error returned by LLM providers and search
// backends and translated to an HTTP status by the server.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Code is an optional specific error code
	Code ErrorCode `json:"code,omitempty"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Param is the parameter that caused the error (if applicable)
	Param string `json:"param,omitempty"`

	// StatusCode is the suggested HTTP status code
	StatusCode int `json:"-"`

	// Source names the backend the error originated from (for debugging)
	Source string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeInvalidRequest, ErrorTypeContextLength:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypePermission:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeOverloaded:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithCode adds an error code to the error.
func (e *APIError) WithCode(code ErrorCode) *APIError {
	e.Code = code
	return e
}

// WithParam adds a parameter name to the error.
func (e *APIError) WithParam(param string) *APIError {
	e.Param = param
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithSource records which backend produced the error.
func (e *APIError) WithSource(source string) *APIError {
	e.Source = source
	return e
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(ErrorTypeInvalidRequest, message)
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string) *APIError {
	return NewAPIError(ErrorTypeRateLimit, message).
		WithCode(ErrorCodeRateLimitExceeded)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(ErrorTypeServer, message)
}

// ErrorFromStatus maps a bare upstream HTTP status to a canonical error.
// It is used when the upstream body is not a parseable error document.
func ErrorFromStatus(source string, status int, message string) *APIError {
	var errType ErrorType
	switch {
	case status == http.StatusUnauthorized:
		errType = ErrorTypeAuthentication
	case status == http.StatusForbidden:
		errType = ErrorTypePermission
	case status == http.StatusNotFound:
		errType = ErrorTypeNotFound
	case status == http.StatusTooManyRequests:
		errType = ErrorTypeRateLimit
	case status == http.StatusServiceUnavailable:
		errType = ErrorTypeOverloaded
	case status >= 400 && status < 500:
		errType = ErrorTypeInvalidRequest
	default:
		errType = ErrorTypeServer
	}
	return &APIError{
		Type:    errType,
		Message: message,
		Source:  source,
		// Upstream 4xx are the server's problem, not the caller's.
		StatusCode: http.StatusBadGateway,
	}
}

// AsAPIError unwraps err looking for a canonical APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
