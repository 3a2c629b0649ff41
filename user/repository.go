package user

import (
	"context"

	"github.com/kbukum/authkit/async"
)

// Repository is the blocking persistence protocol.
//
// Lookups return ErrNotFound when nothing matches. CreateUser must be atomic
// and must report a uniqueness violation with an IDENTITY_ALREADY_EXISTS error.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Principal, error)
	GetByEmailOrUsername(ctx context.Context, value string) (*Principal, error)
	CreateUser(ctx context.Context, u NewUser) (*Principal, error)
}

// AsyncRepository is the suspending form of Repository. Each call returns
// immediately; the result is obtained with Await.
type AsyncRepository interface {
	GetByID(ctx context.Context, id int64) *async.Future[*Principal]
	GetByEmailOrUsername(ctx context.Context, value string) *async.Future[*Principal]
	CreateUser(ctx context.Context, u NewUser) *async.Future[*Principal]
}

// Suspend adapts a blocking repository to the suspending protocol by running
// each call on its own goroutine.
func Suspend(r Repository) AsyncRepository {
	return suspended{r}
}

type suspended struct{ r Repository }

func (s suspended) GetByID(ctx context.Context, id int64) *async.Future[*Principal] {
	return async.Go(ctx, func(ctx context.Context) (*Principal, error) {
		return s.r.GetByID(ctx, id)
	})
}

func (s suspended) GetByEmailOrUsername(ctx context.Context, value string) *async.Future[*Principal] {
	return async.Go(ctx, func(ctx context.Context) (*Principal, error) {
		return s.r.GetByEmailOrUsername(ctx, value)
	})
}

func (s suspended) CreateUser(ctx context.Context, u NewUser) *async.Future[*Principal] {
	return async.Go(ctx, func(ctx context.Context) (*Principal, error) {
		return s.r.CreateUser(ctx, u)
	})
}

// Block adapts a suspending repository to the blocking protocol.
func Block(r AsyncRepository) Repository {
	return blocked{r}
}

type blocked struct{ r AsyncRepository }

func (b blocked) GetByID(ctx context.Context, id int64) (*Principal, error) {
	return b.r.GetByID(ctx, id).Await(ctx)
}

func (b blocked) GetByEmailOrUsername(ctx context.Context, value string) (*Principal, error) {
	return b.r.GetByEmailOrUsername(ctx, value).Await(ctx)
}

func (b blocked) CreateUser(ctx context.Context, u NewUser) (*Principal, error) {
	return b.r.CreateUser(ctx, u).Await(ctx)
}
