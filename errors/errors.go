package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
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

// Is reports whether target is an AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
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

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Sentinels for errors.Is comparisons. Never return these directly; use the
// constructors so callers cannot mutate shared values.
var (
	ErrInvalidCredentials    = &AppError{Code: ErrCodeInvalidCredentials}
	ErrAccountInactive       = &AppError{Code: ErrCodeAccountInactive}
	ErrIdentityAlreadyExists = &AppError{Code: ErrCodeIdentityAlreadyExists}
	ErrPrincipalNotFound     = &AppError{Code: ErrCodePrincipalNotFound}
	ErrTokenExpired          = &AppError{Code: ErrCodeTokenExpired}
	ErrTokenMalformed        = &AppError{Code: ErrCodeTokenMalformed}
	ErrTokenInvalidSignature = &AppError{Code: ErrCodeTokenInvalidSignature}
	ErrTokenKindMismatch     = &AppError{Code: ErrCodeTokenKindMismatch}
	ErrTokenRevoked          = &AppError{Code: ErrCodeTokenRevoked}
	ErrNoTokenCandidate      = &AppError{Code: ErrCodeNoTokenCandidate}
	ErrHashMalformed         = &AppError{Code: ErrCodeHashMalformed}
	ErrForbidden             = &AppError{Code: ErrCodeForbidden}
	ErrInvalidInput          = &AppError{Code: ErrCodeInvalidInput}
)

// --- Auth Error Constructors ---

// InvalidCredentials is returned for an unknown identity or a wrong password.
func InvalidCredentials() *AppError {
	return New(ErrCodeInvalidCredentials, "Invalid credentials.", http.StatusUnauthorized)
}

// AccountInactive creates an error for a disabled principal.
func AccountInactive() *AppError {
	return New(ErrCodeAccountInactive, "This account is inactive.", http.StatusForbidden)
}

// IdentityAlreadyExists creates an error for a taken email or username.
func IdentityAlreadyExists(field string) *AppError {
	e := New(ErrCodeIdentityAlreadyExists, "A user with these details already exists.", http.StatusConflict)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// PrincipalNotFound creates an error for a token subject with no stored principal.
func PrincipalNotFound() *AppError {
	return New(ErrCodePrincipalNotFound, "User not found.", http.StatusUnauthorized)
}

// Forbidden creates a new AppError for forbidden access.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return New(ErrCodeForbidden, reason, http.StatusForbidden)
}

// TokenExpired creates a new AppError for an expired token.
func TokenExpired() *AppError {
	return New(ErrCodeTokenExpired, "Token has expired.", http.StatusUnauthorized)
}

// TokenMalformed creates an error for a token that cannot be parsed.
func TokenMalformed(cause error) *AppError {
	return New(ErrCodeTokenMalformed, "Malformed token.", http.StatusUnauthorized).WithCause(cause)
}

// TokenInvalidSignature creates an error for a token signed with another key or algorithm.
func TokenInvalidSignature() *AppError {
	return New(ErrCodeTokenInvalidSignature, "Invalid token signature.", http.StatusUnauthorized)
}

// TokenKindMismatch creates an error for an access token used as refresh or vice versa.
func TokenKindMismatch(expected, got string) *AppError {
	return New(ErrCodeTokenKindMismatch, fmt.Sprintf("Expected a %s token.", expected), http.StatusUnauthorized).
		WithDetail("expected", expected).
		WithDetail("got", got)
}

// TokenRevoked creates an error for a refresh token that was already rotated or logged out.
func TokenRevoked() *AppError {
	return New(ErrCodeTokenRevoked, "Token has been revoked.", http.StatusUnauthorized)
}

// NoTokenCandidate creates an error for a request carrying no token in any enabled source.
func NoTokenCandidate(kind string) *AppError {
	msg := "Token not found."
	if kind != "" {
		msg = capitalize(kind) + " token not found."
	}
	return New(ErrCodeNoTokenCandidate, msg, http.StatusUnauthorized).WithDetail("kind", kind)
}

// HashMalformed creates an error for a stored hash that cannot be parsed.
func HashMalformed(cause error) *AppError {
	return New(ErrCodeHashMalformed, "Stored password hash is malformed.", http.StatusInternalServerError).WithCause(cause)
}

// --- Generic Constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("Missing required field: %s", field), http.StatusBadRequest).
		WithDetail("field", field)
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.",
		http.StatusInternalServerError).WithCause(cause)
}

// DatabaseError creates a new AppError for a database error.
func DatabaseError(cause error) *AppError {
	return New(ErrCodeDatabaseError, "A database error occurred. Please try again.",
		http.StatusInternalServerError).WithCause(cause)
}

// ServiceUnavailable creates an error for an unreachable backing service.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable, fmt.Sprintf("The %s is temporarily unavailable.", service),
		http.StatusServiceUnavailable).WithDetail("service", service)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
