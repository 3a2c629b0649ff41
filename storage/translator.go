package storage

import (
	"strings"

	apperrors "github.com/kbukum/authkit/errors"
)

// identityColumns are the unique columns of the users table.
var identityColumns = []string{"email", "username"}

// DuplicateField guesses which identity column a driver's uniqueness message
// refers to. It returns "" when the message names neither.
func DuplicateField(msg string) string {
	msg = strings.ToLower(msg)
	for _, col := range identityColumns {
		if strings.Contains(msg, "."+col) || strings.Contains(msg, "_"+col+"_") ||
			strings.Contains(msg, "("+col+")") || strings.HasSuffix(msg, "_"+col) {
			return col
		}
	}
	return ""
}

// Duplicate converts a uniqueness violation into IDENTITY_ALREADY_EXISTS.
// field may be empty when the driver did not say which column collided.
func Duplicate(field string, cause error) *apperrors.AppError {
	return apperrors.IdentityAlreadyExists(field).WithCause(cause)
}
