// Package revocation holds denylists of refresh-token ids.
//
// A denylist is only consulted when one is attached to the auth service.
// Entries live until the token they deny would have expired anyway.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token ids (jti).
type Denylist interface {
	// Revoke denies jti until the given instant.
	Revoke(ctx context.Context, jti string, until time.Time) error
	// IsRevoked reports whether jti is currently denied.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeIfAbsent denies jti until the given instant unless it is already
	// denied, as one atomic step. It reports whether this call revoked it.
	RevokeIfAbsent(ctx context.Context, jti string, until time.Time) (bool, error)
}

// Memory is a process-local Denylist.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// MemoryOption configures a Memory denylist.
type MemoryOption func(*Memory)

// WithClock overrides the time source used to expire entries.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty in-memory denylist.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{entries: make(map[string]time.Time), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Denylist = (*Memory)(nil)

func (m *Memory) Revoke(ctx context.Context, jti string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	if cur, ok := m.entries[jti]; !ok || until.After(cur) {
		m.entries[jti] = until
	}
	return nil
}

func (m *Memory) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.entries[jti]
	return ok && m.now().Before(until), nil
}

func (m *Memory) RevokeIfAbsent(ctx context.Context, jti string, until time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[jti]; ok && m.now().Before(cur) {
		return false, nil
	}
	m.entries[jti] = until
	return true, nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	return len(m.entries)
}

// prune drops expired entries. Caller holds mu.
func (m *Memory) prune() {
	now := m.now()
	for jti, until := range m.entries {
		if !now.Before(until) {
			delete(m.entries, jti)
		}
	}
}
