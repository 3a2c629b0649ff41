// Package errors defines the AppError type shared by every authkit package.
//
// Each failure of the auth toolkit maps to a machine-readable ErrorCode with a
// recommended HTTP status, so routers can render errors without knowing which
// component produced them. Comparison works by code:
//
//	if errors.Is(err, apperrors.ErrTokenExpired) { ... }
package errors
