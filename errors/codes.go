package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Session errors
const (
	// ErrCodeUserNotFound indicates the login identifier matched no user.
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"
	// ErrCodeBadCredential indicates the password did not match the stored hash.
	ErrCodeBadCredential ErrorCode = "BAD_CREDENTIAL"
	// ErrCodeInvalidRefreshToken indicates the refresh token was tampered, malformed or expired.
	ErrCodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
	// ErrCodeMissingRefreshToken indicates the request carried no refresh token.
	ErrCodeMissingRefreshToken ErrorCode = "MISSING_REFRESH_TOKEN"
	// ErrCodeUnauthorized indicates a protected route was called without a valid access token.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Registration errors
const (
	// ErrCodeUsernameConflict indicates the username is already taken.
	ErrCodeUsernameConflict ErrorCode = "USERNAME_CONFLICT"
	// ErrCodeEmailConflict indicates the email is already registered.
	ErrCodeEmailConflict ErrorCode = "EMAIL_CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the request body failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected storage, crypto or serialization failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Codes lists every code the service can return. The set is closed.
var Codes = []ErrorCode{
	ErrCodeUserNotFound,
	ErrCodeBadCredential,
	ErrCodeInvalidRefreshToken,
	ErrCodeMissingRefreshToken,
	ErrCodeUnauthorized,
	ErrCodeUsernameConflict,
	ErrCodeEmailConflict,
	ErrCodeInvalidInput,
	ErrCodeInternal,
}
