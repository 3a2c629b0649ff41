package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/authkit/redis"
)

const keyPrefix = "revoked:"

// Redis is a Denylist shared across processes through Redis. Each entry is a
// key with a TTL, so Redis expires it together with the token.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedis creates a denylist on top of a started redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

var _ Denylist = (*Redis)(nil)

func (r *Redis) key(jti string) string {
	return r.client.Key(keyPrefix + jti)
}

func (r *Redis) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(jti), "1", ttl); err != nil {
		return fmt.Errorf("revocation: revoke: %w", err)
	}
	return nil
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(jti))
	if err != nil {
		return false, fmt.Errorf("revocation: lookup: %w", err)
	}
	return n > 0, nil
}

// RevokeIfAbsent uses SET NX PX so concurrent callers across processes agree
// on a single winner. A token already past until needs no entry.
func (r *Redis) RevokeIfAbsent(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, r.key(jti), "1", ttl)
	if err != nil {
		return false, fmt.Errorf("revocation: revoke: %w", err)
	}
	return ok, nil
}
