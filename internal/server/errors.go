package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/localrivet/extractsum/internal/errortypes"
)

// ErrorResponse represents the structure of error responses sent by the API
type ErrorResponse struct {
	Status     string                 `json:"status"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
}

// Error response codes
const (
	StatusCodeValidationError = "VALIDATION_ERROR"
	StatusCodeNotFound        = "NOT_FOUND"
	StatusCodeRateLimited     = "RATE_LIMITED"
	StatusCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	StatusCodeDatabaseError   = "DATABASE_ERROR"
	StatusCodeConfigError     = "CONFIG_ERROR"
	StatusCodeInternalError   = "INTERNAL_ERROR"
	StatusCodeUnknownError    = "UNKNOWN_ERROR"
)

// errorMapping is the HTTP rendering of an error type.
type errorMapping struct {
	status int
	code   string
}

var errorMappings = map[errortypes.ErrorType]errorMapping{
	errortypes.ErrorTypeValidation: {http.StatusBadRequest, StatusCodeValidationError},
	errortypes.ErrorTypeNotFound:   {http.StatusNotFound, StatusCodeNotFound},
	errortypes.ErrorTypeRateLimit:  {http.StatusTooManyRequests, StatusCodeRateLimited},
	errortypes.ErrorTypeDatabase:   {http.StatusInternalServerError, StatusCodeDatabaseError},
	errortypes.ErrorTypeConfig:     {http.StatusInternalServerError, StatusCodeConfigError},
	errortypes.ErrorTypeInternal:   {http.StatusInternalServerError, StatusCodeInternalError},
}

// StatusFor returns the HTTP status an error is reported with.
func StatusFor(err error) int {
	var statusErr *ErrorWithStatus
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode()
	}
	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		if m, ok := errorMappings[appErr.Type]; ok {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// ErrorWithStatus creates an error with an HTTP status code
type ErrorWithStatus struct {
	err        error
	statusCode int
	errorCode  string
	message    string
}

// NewErrorWithStatus creates a new error with HTTP status code
func NewErrorWithStatus(err error, status int, code, message string) *ErrorWithStatus {
	return &ErrorWithStatus{
		err:        err,
		statusCode: status,
		errorCode:  code,
		message:    message,
	}
}

// Error returns the error message
func (e *ErrorWithStatus) Error() string {
	if e.message != "" {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.err.Error()
}

// Unwrap returns the underlying error
func (e *ErrorWithStatus) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status code
func (e *ErrorWithStatus) StatusCode() int {
	return e.statusCode
}

// ErrorCode returns the application error code
func (e *ErrorWithStatus) ErrorCode() string {
	return e.errorCode
}

// Message returns the client-friendly message
func (e *ErrorWithStatus) Message() string {
	return e.message
}

// WriteError writes err as a JSON error response with the given status.
// Client errors carry the error text as the message; server errors do not
// expose it.
func WriteError(w http.ResponseWriter, err error, status int) {
	errorResponse := errorToResponse(err)
	errorResponse.StackTrace = ""
	if status >= http.StatusInternalServerError {
		slog.Error("API error", "error", err, "status", status)
		errorResponse.Message = "An unexpected error occurred"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		slog.Error("Error encoding JSON error response", "error", err, "original_error_message", errorResponse.Message, "status", status)
	}
}

// errorToResponse converts an error to a standardized ErrorResponse
func errorToResponse(err error) ErrorResponse {
	code := StatusCodeUnknownError
	var details map[string]interface{}
	var stackTrace string

	var statusErr *ErrorWithStatus
	if errors.As(err, &statusErr) {
		code = statusErr.ErrorCode()
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		if len(appErr.Fields) > 0 {
			details = appErr.Fields
		}
		stackTrace = appErr.StackInfo
		if m, ok := errorMappings[appErr.Type]; ok && statusErr == nil {
			code = m.code
		}
	}

	return ErrorResponse{
		Status:     "error",
		Code:       code,
		Message:    err.Error(),
		Details:    details,
		StackTrace: stackTrace,
	}
}
