// Package gormrepo implements user.Repository with GORM.
package gormrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kbukum/authkit/database"
	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/storage"
	"github.com/kbukum/authkit/user"
)

// Repository stores principals through a database.DB.
type Repository struct {
	db *database.DB
}

// New creates a repository over db.
func New(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ user.Repository = (*Repository)(nil)

// Migrate creates or updates the users table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&UserModel{})
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*user.Principal, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return m.principal(), nil
}

// GetByEmailOrUsername prefers an email match over a username match.
func (r *Repository) GetByEmailOrUsername(ctx context.Context, value string) (*user.Principal, error) {
	var m UserModel
	err := r.db.WithContext(ctx).Where("email = ?", value).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = r.db.WithContext(ctx).Where("username = ?", value).First(&m).Error
	}
	if err != nil {
		return nil, translate(err)
	}
	return m.principal(), nil
}

// CreateUser inserts u inside one transaction. Collisions found before the
// insert name the column; one raced in by a concurrent writer is caught by
// the unique index.
func (r *Repository) CreateUser(ctx context.Context, u user.NewUser) (*user.Principal, error) {
	m := fromNewUser(u)
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, probe := range []struct{ column, value string }{
			{"email", u.Email},
			{"username", u.Username},
		} {
			var n int64
			if err := tx.Model(&UserModel{}).Where(probe.column+" = ?", probe.value).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return storage.Duplicate(probe.column, nil)
			}
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return m.principal(), nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return user.ErrNotFound
	case database.IsDuplicateError(err):
		return storage.Duplicate(storage.DuplicateField(err.Error()), err)
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return database.FromDatabase(err)
}
