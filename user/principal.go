// Package user defines the principal record and the repository protocol that
// persistence adapters implement, in blocking and suspending forms.
package user

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a lookup resolves nothing.
var ErrNotFound = errors.New("user: not found")

// Principal is an authenticated identity record.
type Principal struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the caller-facing view of a principal.
type Profile struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	IsActive    bool   `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Public strips the password hash.
func (p *Principal) Public() Profile {
	return Profile{
		ID:          p.ID,
		Email:       p.Email,
		Username:    p.Username,
		IsActive:    p.IsActive,
		IsStaff:     p.IsStaff,
		IsSuperuser: p.IsSuperuser,
	}
}

// NewUser carries the fields of a principal to be created.
type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
}

// Principal returns the record a repository stores for u under id.
func (u NewUser) Principal(id int64, createdAt time.Time) *Principal {
	return &Principal{
		ID:           id,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
		CreatedAt:    createdAt,
	}
}
