package gormrepo

import (
	"time"

	"github.com/kbukum/authkit/user"
)

// UserModel is the GORM mapping of the users table.
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"size:320;not null;uniqueIndex"`
	Username     string    `gorm:"size:150;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	IsStaff      bool      `gorm:"not null;default:false"`
	IsSuperuser  bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName pins the table name regardless of naming strategy.
func (UserModel) TableName() string { return "auth_users" }

func (m *UserModel) principal() *user.Principal {
	return &user.Principal{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		IsStaff:      m.IsStaff,
		IsSuperuser:  m.IsSuperuser,
		CreatedAt:    m.CreatedAt,
	}
}

func fromNewUser(u user.NewUser) *UserModel {
	return &UserModel{
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		IsSuperuser:  u.IsSuperuser,
	}
}
