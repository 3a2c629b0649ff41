// Package memory is an in-process user.Repository for tests, examples and
// single-instance deployments.
package memory

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/user"
)

// Store keeps principals in maps guarded by a mutex.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]*user.Principal
	byEmail    map[string]int64
	byUsername map[string]int64
	now        func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:     1,
		byID:       make(map[int64]*user.Principal),
		byEmail:    make(map[string]int64),
		byUsername: make(map[string]int64),
		now:        time.Now,
	}
}

var _ user.Repository = (*Store)(nil)

// GetByID returns a copy of the principal with id.
func (s *Store) GetByID(ctx context.Context, id int64) (*user.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetByEmailOrUsername matches value against emails first, then usernames.
func (s *Store) GetByEmailOrUsername(ctx context.Context, value string) (*user.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[value]
	if !ok {
		id, ok = s.byUsername[value]
	}
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// CreateUser checks uniqueness and inserts under one lock.
func (s *Store) CreateUser(ctx context.Context, u user.NewUser) (*user.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return nil, apperrors.IdentityAlreadyExists("email")
	}
	if _, taken := s.byUsername[u.Username]; taken {
		return nil, apperrors.IdentityAlreadyExists("username")
	}
	p := u.Principal(s.nextID, s.now().UTC())
	s.nextID++
	s.byID[p.ID] = p
	s.byEmail[p.Email] = p.ID
	s.byUsername[p.Username] = p.ID
	cp := *p
	return &cp, nil
}

// SetActive toggles a principal's active flag.
func (s *Store) SetActive(id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	p.IsActive = active
	return nil
}

// Delete removes a principal.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	delete(s.byEmail, p.Email)
	delete(s.byUsername, p.Username)
	delete(s.byID, id)
	return nil
}

// Len returns the number of stored principals.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
