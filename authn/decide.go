package authn

import (
	"errors"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/user"
	"github.com/kbukum/authkit/validation"
)

// role selects the privilege flags of a created principal.
type role int

const (
	roleUser role = iota
	roleSuperuser
)

// identityProbe is one uniqueness lookup performed before creating a user.
type identityProbe struct {
	field string
	value string
}

// identityProbes returns the lookups Register runs, email first.
func identityProbes(email, username string) []identityProbe {
	return []identityProbe{
		{field: "email", value: email},
		{field: "username", value: username},
	}
}

// found folds the repository's "absent" sentinel into a nil principal.
func found(p *user.Principal, err error) (*user.Principal, error) {
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func validateRegistration(email, username, password string) error {
	return validation.New().
		Required("email", email).
		Required("username", username).
		Custom(password != "", "password", "is required").
		Err()
}

// checkRegistrable fails when a lookup for field resolved an existing principal.
func checkRegistrable(field string, existing *user.Principal) error {
	if existing != nil {
		return apperrors.IdentityAlreadyExists(field)
	}
	return nil
}

// checkCredentials decides a login attempt. An unknown identity and a wrong
// password produce the same error. Activity is only revealed to a caller who
// presented the right password.
func checkCredentials(p *user.Principal, passwordOK bool) error {
	if p == nil || !passwordOK {
		return apperrors.InvalidCredentials()
	}
	return checkActive(p)
}

func checkActive(p *user.Principal) error {
	if !p.IsActive {
		return apperrors.AccountInactive()
	}
	return nil
}

// resolvePrincipal decides whether the subject of a verified token may act.
func resolvePrincipal(p *user.Principal) error {
	if p == nil {
		return apperrors.PrincipalNotFound()
	}
	return checkActive(p)
}

func newUserParams(email, username, hash string, r role) user.NewUser {
	return user.NewUser{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      r == roleSuperuser,
		IsSuperuser:  r == roleSuperuser,
	}
}
