// Package errors provides custom error types for the fittrack API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import (
	"fmt"
	"math"
	"net/http"
	"time"
)

// Kind groups error codes by how a caller is expected to recover.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindToken          Kind = "token"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindRateLimit      Kind = "rate_limit"
	KindInternal       Kind = "internal"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Kind       Kind          `json:"-"`
	StatusCode int           `json:"-"`
	RetryAfter time.Duration `json:"-"`
	Internal   error         `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// copies made by Wrap and WithMessage still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		RetryAfter: sentinel.RetryAfter,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Kind:       sentinel.Kind,
		StatusCode: sentinel.StatusCode,
		RetryAfter: sentinel.RetryAfter,
		Internal:   sentinel.Internal,
	}
}

// Locked returns ErrAccountLocked carrying the remaining lock time.
func Locked(retryAfter time.Duration) *AppError {
	minutes := int(math.Ceil(retryAfter.Minutes()))
	err := WithMessage(ErrAccountLocked,
		fmt.Sprintf("Account is temporarily locked. Try again in %d minutes.", minutes))
	err.RetryAfter = retryAfter
	return err
}

// RateLimited returns ErrRateLimited carrying the time until the window resets.
func RateLimited(retryAfter time.Duration) *AppError {
	err := WithMessage(ErrRateLimited, ErrRateLimited.Message)
	err.RetryAfter = retryAfter
	return err
}

// Validation errors.
var (
	ErrInvalidInput     = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrInvalidEmail     = &AppError{Code: "INVALID_EMAIL", Message: "Please enter a valid email address", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrWeakPassword     = &AppError{Code: "WEAK_PASSWORD", Message: "Password must be at least 8 characters with uppercase, lowercase, number, and special character", Kind: KindValidation, StatusCode: http.StatusBadRequest}
	ErrPasswordMismatch = &AppError{Code: "PASSWORD_MISMATCH", Message: "Passwords do not match", Kind: KindValidation, StatusCode: http.StatusBadRequest}
)

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", Kind: KindAuthentication, StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", Kind: KindAuthentication, StatusCode: http.StatusUnauthorized}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", Kind: KindAuthentication, StatusCode: http.StatusLocked}
	ErrRateLimited        = &AppError{Code: "RATE_LIMITED", Message: "Too many login attempts. Please try again later.", Kind: KindRateLimit, StatusCode: http.StatusTooManyRequests}
)

// Two-factor errors.
var (
	ErrNoPendingChallenge = &AppError{Code: "NO_PENDING_CHALLENGE", Message: "No verification is pending for this account", Kind: KindAuthentication, StatusCode: http.StatusBadRequest}
	ErrCodeExpired        = &AppError{Code: "CODE_EXPIRED", Message: "Verification code has expired", Kind: KindAuthentication, StatusCode: http.StatusUnauthorized}
	ErrCodeMismatch       = &AppError{Code: "CODE_MISMATCH", Message: "Invalid verification code", Kind: KindAuthentication, StatusCode: http.StatusUnauthorized}
)

// Session token errors. Any of these leaves the caller unauthenticated.
var (
	ErrTokenMissing      = &AppError{Code: "TOKEN_MISSING", Message: "Authentication token is missing", Kind: KindToken, StatusCode: http.StatusUnauthorized}
	ErrTokenExpired      = &AppError{Code: "TOKEN_EXPIRED", Message: "Authentication token has expired", Kind: KindToken, StatusCode: http.StatusUnauthorized}
	ErrTokenBadSignature = &AppError{Code: "TOKEN_BAD_SIGNATURE", Message: "Invalid token signature", Kind: KindToken, StatusCode: http.StatusUnauthorized}
	ErrTokenMalformed    = &AppError{Code: "TOKEN_MALFORMED", Message: "Invalid authentication token", Kind: KindToken, StatusCode: http.StatusUnauthorized}
	ErrCSRFMismatch      = &AppError{Code: "CSRF_MISMATCH", Message: "CSRF token validation failed", Kind: KindToken, StatusCode: http.StatusUnauthorized}
)

// Password reset errors.
var (
	ErrResetExpired      = &AppError{Code: "RESET_EXPIRED", Message: "Reset code has expired", Kind: KindToken, StatusCode: http.StatusBadRequest}
	ErrResetCodeMismatch = &AppError{Code: "RESET_CODE_MISMATCH", Message: "Invalid reset code", Kind: KindToken, StatusCode: http.StatusBadRequest}
	ErrResetBadSignature = &AppError{Code: "RESET_BAD_SIGNATURE", Message: "Invalid token signature", Kind: KindToken, StatusCode: http.StatusBadRequest}
	ErrResetAlreadyUsed  = &AppError{Code: "RESET_ALREADY_USED", Message: "This reset code has already been used", Kind: KindToken, StatusCode: http.StatusBadRequest}
	ErrResetInvalid      = &AppError{Code: "RESET_INVALID", Message: "Invalid reset token", Kind: KindToken, StatusCode: http.StatusBadRequest}
)

// General errors.
var (
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", Kind: KindInternal, StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "Email already registered", Kind: KindConflict, StatusCode: http.StatusConflict}
)

// Activity errors.
var (
	ErrProfileNotFound = &AppError{Code: "PROFILE_NOT_FOUND", Message: "Profile not found", Kind: KindNotFound, StatusCode: http.StatusNotFound}
)
