// Package postgres implements user.Repository on a pgx/v5 pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/storage"
	"github.com/kbukum/authkit/user"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Schema creates the users table. Safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS auth_users (
	id            BIGSERIAL PRIMARY KEY,
	email         VARCHAR(320) NOT NULL,
	username      VARCHAR(150) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	is_staff      BOOLEAN NOT NULL DEFAULT FALSE,
	is_superuser  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT auth_users_email_key UNIQUE (email),
	CONSTRAINT auth_users_username_key UNIQUE (username)
)`

const columns = `id, email, username, password_hash, is_active, is_staff, is_superuser, created_at`

// Querier is the subset of *pgxpool.Pool the repository uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores principals in PostgreSQL.
type Repository struct {
	db Querier
}

// New creates a repository over db, usually a *pgxpool.Pool.
func New(db Querier) *Repository {
	return &Repository{db: db}
}

var _ user.Repository = (*Repository)(nil)

// Connect opens a pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// Migrate applies Schema.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*user.Principal, error) {
	row := r.db.QueryRow(ctx, `SELECT `+columns+` FROM auth_users WHERE id = $1`, id)
	return scan(row)
}

// GetByEmailOrUsername prefers an email match over a username match.
func (r *Repository) GetByEmailOrUsername(ctx context.Context, value string) (*user.Principal, error) {
	row := r.db.QueryRow(ctx, `SELECT `+columns+` FROM auth_users
		WHERE email = $1 OR username = $1
		ORDER BY (email = $1) DESC
		LIMIT 1`, value)
	return scan(row)
}

// CreateUser inserts u in a single statement; the unique constraints decide
// races between concurrent registrations.
func (r *Repository) CreateUser(ctx context.Context, u user.NewUser) (*user.Principal, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO auth_users
		(email, username, password_hash, is_active, is_staff, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+columns,
		u.Email, u.Username, u.PasswordHash, u.IsActive, u.IsStaff, u.IsSuperuser)
	return scan(row)
}

func scan(row pgx.Row) (*user.Principal, error) {
	var p user.Principal
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.PasswordHash,
		&p.IsActive, &p.IsStaff, &p.IsSuperuser, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.Duplicate(storage.DuplicateField(pgErr.ConstraintName), err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.DatabaseError(err)
}
