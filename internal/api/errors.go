// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/advisor"
	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/session"
	"github.com/pnid-studio/backend/internal/store"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// mapDomainError translates errors from the diagram, session, store and
// advisor layers into APIErrors. Rejection codes pass through so the
// frontend can react to the specific refusal.
func mapDomainError(err error) *APIError {
	var rej *diagram.Rejection
	if errors.As(err, &rej) {
		status := http.StatusBadRequest
		switch rej.Code {
		case diagram.RejectUnknownTag, diagram.RejectUnknownPipeline:
			status = http.StatusNotFound
		case diagram.RejectOverlap, diagram.RejectDuplicateTag:
			status = http.StatusConflict
		}
		return &APIError{Status: status, Code: rej.Code, Message: rej.Message}
	}
	if errors.Is(err, diagram.ErrUnroutable) {
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    "UNROUTABLE",
			Message: err.Error(),
		}
	}
	if errors.Is(err, session.ErrNoSession) {
		return &APIError{Status: http.StatusNotFound, Code: "NO_SESSION", Message: err.Error()}
	}
	if errors.Is(err, store.ErrNotFound) {
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	}
	if errors.Is(err, advisor.ErrDisabled) {
		return NewServiceUnavailableError(err.Error())
	}
	return nil
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		if apiErr = mapDomainError(err); apiErr == nil {
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "UNKNOWN_ERROR",
				Message: "An unexpected error occurred",
				Details: err.Error(),
			}
		}
	}

	// Send JSON response
	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
