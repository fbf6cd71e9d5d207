package api

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeServerError         ErrorType = "server_error"
	ErrorTypeInvalidRequest      ErrorType = "invalid_request"
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeWorkspaceError      ErrorType = "workspace_error"
	ErrorTypeInfrastructureError ErrorType = "infrastructure_error"
)

// APIError represents a structured API error with type, param, and message.
//
// Test failures and timeouts are never APIErrors: they are first-class
// result data carried in VerificationResult. Only conditions that prevent
// a verification from being evaluated at all surface as errors.
type APIError struct {
	Type    ErrorType `json:"type"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level
// error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewInvalidRequestError creates an APIError for invalid request parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}

// NewWorkspaceError creates an APIError for workspace allocation or
// file-write failures. Workspace errors are infrastructure-class: they
// abort the current attempt without consuming a correction-loop retry.
func NewWorkspaceError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeWorkspaceError,
		Message: message,
	}
}

// NewInfrastructureError creates an APIError for environments that cannot
// support execution at all (missing interpreter, corrupted workspace).
func NewInfrastructureError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInfrastructureError,
		Message: message,
	}
}

// IsInfrastructure reports whether err is or wraps an infrastructure-class
// APIError (workspace or infrastructure type), which aborts a correction
// loop early instead of consuming a retry.
func IsInfrastructure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Type == ErrorTypeWorkspaceError || apiErr.Type == ErrorTypeInfrastructureError
}
