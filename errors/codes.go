package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Credential and account errors
const (
	// ErrCodeInvalidCredentials covers unknown identities and wrong passwords alike.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrCodeAccountInactive indicates the principal exists but is disabled.
	ErrCodeAccountInactive ErrorCode = "ACCOUNT_INACTIVE"
	// ErrCodeIdentityAlreadyExists indicates the email or username is taken.
	ErrCodeIdentityAlreadyExists ErrorCode = "IDENTITY_ALREADY_EXISTS"
	// ErrCodePrincipalNotFound indicates a token subject no longer resolves.
	ErrCodePrincipalNotFound ErrorCode = "PRINCIPAL_NOT_FOUND"
	// ErrCodeForbidden indicates the principal lacks a required role.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
)

// Token errors
const (
	ErrCodeTokenExpired          ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenMalformed        ErrorCode = "TOKEN_MALFORMED"
	ErrCodeTokenInvalidSignature ErrorCode = "TOKEN_INVALID_SIGNATURE"
	ErrCodeTokenKindMismatch     ErrorCode = "TOKEN_KIND_MISMATCH"
	ErrCodeTokenRevoked          ErrorCode = "TOKEN_REVOKED"
	ErrCodeNoTokenCandidate      ErrorCode = "NO_TOKEN_CANDIDATE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeHashMalformed indicates a stored password hash cannot be parsed.
	ErrCodeHashMalformed ErrorCode = "HASH_MALFORMED"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a persistence failure.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	// ErrCodeServiceUnavailable indicates a backing service is unreachable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeDatabaseError:      true,
	ErrCodeServiceUnavailable: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// None of the credential or token codes are retryable.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
