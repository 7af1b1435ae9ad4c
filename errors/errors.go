// Package errors provides the closed error taxonomy of the session service.
// Every failing operation returns exactly one *AppError whose code maps to a
// single HTTP status at the boundary.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error. It is logged, never serialized.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Constructors ---

// UserNotFound creates the error returned when a login identifier matches no user.
func UserNotFound() *AppError {
	return &AppError{
		Code: ErrCodeUserNotFound, Message: "No user matches the provided identifier.",
		HTTPStatus: http.StatusNotFound,
	}
}

// BadCredential creates the error returned when a password does not match.
func BadCredential() *AppError {
	return &AppError{
		Code: ErrCodeBadCredential, Message: "The provided password is incorrect.",
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidRefreshToken creates the error returned for any refresh token that
// cannot be decoded. Tampered and expired tokens are not distinguished.
func InvalidRefreshToken() *AppError {
	return &AppError{
		Code: ErrCodeInvalidRefreshToken, Message: "The refresh token is invalid. Please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// MissingRefreshToken creates the error returned when no refresh token was sent.
func MissingRefreshToken() *AppError {
	return &AppError{
		Code: ErrCodeMissingRefreshToken, Message: "Refresh token not found.",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthorized creates a new AppError for unauthorized access.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// UsernameConflict creates the error returned when a username is taken.
func UsernameConflict() *AppError {
	return &AppError{
		Code: ErrCodeUsernameConflict, Message: "The username already exists.",
		HTTPStatus: http.StatusConflict,
	}
}

// EmailConflict creates the error returned when an email is already registered.
func EmailConflict() *AppError {
	return &AppError{
		Code: ErrCodeEmailConflict, Message: "The email already exists.",
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a new AppError for an internal server error. The cause is
// kept for logging only.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
