package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application-level error
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Details    any    `json:"details,omitempty"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldIssue describes a single invalid field in a validation error
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// Error codes
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeAuthRequired       = "AUTHENTICATION_REQUIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeNotFound           = "RESOURCE_NOT_FOUND"
	CodeMissingConfig      = "MISSING_CONFIGURATION"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeDuplicateTag       = "DUPLICATE_TAG"
	CodeReminderLimit      = "REMINDER_LIMIT_EXCEEDED"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// Common errors
var (
	ErrAuthenticationRequired = &AppError{
		Code:       CodeAuthRequired,
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidToken = &AppError{
		Code:       CodeInvalidToken,
		Message:    "Invalid token",
		StatusCode: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       CodeTokenExpired,
		Message:    "Token has expired",
		StatusCode: http.StatusUnauthorized,
	}

	ErrPermissionDenied = &AppError{
		Code:       CodePermissionDenied,
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       CodeNotFound,
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrInternalError = &AppError{
		Code:       CodeInternalError,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrPushNotConfigured = &AppError{
		Code:       CodeMissingConfig,
		Message:    "Push delivery is not configured on this server",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrInvalidCredentials = &AppError{
		Code:       CodeInvalidCredentials,
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrEmailTaken = &AppError{
		Code:       CodeEmailTaken,
		Message:    "An account with this email already exists",
		StatusCode: http.StatusBadRequest,
	}

	ErrDuplicateTag = &AppError{
		Code:       CodeDuplicateTag,
		Message:    "A tag with this name already exists",
		StatusCode: http.StatusBadRequest,
	}

	ErrReminderLimit = &AppError{
		Code:       CodeReminderLimit,
		Message:    "This todo already has the maximum number of active reminders",
		StatusCode: http.StatusBadRequest,
	}
)

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ValidationError creates a validation error
func ValidationError(message string) *AppError {
	return &AppError{
		Code:       CodeValidationError,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// ValidationErrorWithFields creates a validation error carrying per-field issues
func ValidationErrorWithFields(message string, fields ...FieldIssue) *AppError {
	return &AppError{
		Code:       CodeValidationError,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    fields,
	}
}

// NotFoundError creates a not-found error with a specific message
func NotFoundError(message string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
