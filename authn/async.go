package authn

import (
	"context"
	"fmt"

	"github.com/kbukum/authkit/async"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/observability"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/token"
	"github.com/kbukum/authkit/user"
)

// AsyncService runs the auth flows against a suspending repository. Every
// operation returns at once with a future; repository calls are awaited
// under the operation's context.
type AsyncService struct {
	*engine
	repo user.AsyncRepository
}

// NewAsync creates a suspending service.
func NewAsync(s settings.Settings, repo user.AsyncRepository, opts ...Option) (*AsyncService, error) {
	if repo == nil {
		return nil, fmt.Errorf("authn: repository is required")
	}
	e, err := newEngine(s, opts)
	if err != nil {
		return nil, err
	}
	return &AsyncService{engine: e, repo: repo}, nil
}

// Register is the suspending form of Service.Register.
func (s *AsyncService) Register(ctx context.Context, email, username, password string) *async.Future[*Registration] {
	return async.Go(ctx, func(ctx context.Context) (reg *Registration, err error) {
		ctx, span := s.start(ctx, "Register")
		defer func() { s.finish(ctx, span, "Register", err) }()

		p, err := s.createUser(ctx, email, username, password, roleUser)
		if err != nil {
			return nil, err
		}
		observability.SetSpanAttribute(ctx, observability.AttrUserID, p.ID)
		s.log.WithContext(ctx).Info("principal registered", logger.Fields(logger.FieldUserID, p.ID))
		return s.registration(p)
	})
}

// CreateSuperuser is the suspending form of Service.CreateSuperuser.
func (s *AsyncService) CreateSuperuser(ctx context.Context, email, username, password string) *async.Future[*user.Principal] {
	return async.Go(ctx, func(ctx context.Context) (p *user.Principal, err error) {
		ctx, span := s.start(ctx, "CreateSuperuser")
		defer func() { s.finish(ctx, span, "CreateSuperuser", err) }()

		p, err = s.createUser(ctx, email, username, password, roleSuperuser)
		if err != nil {
			return nil, err
		}
		s.log.WithContext(ctx).Info("superuser created", logger.Fields(logger.FieldUserID, p.ID))
		return p, nil
	})
}

func (s *AsyncService) createUser(ctx context.Context, email, username, password string, r role) (*user.Principal, error) {
	if err := validateRegistration(email, username, password); err != nil {
		return nil, err
	}
	for _, probe := range identityProbes(email, username) {
		existing, err := found(s.repo.GetByEmailOrUsername(ctx, probe.value).Await(ctx))
		if err != nil {
			return nil, fmt.Errorf("authn: lookup %s: %w", probe.field, err)
		}
		if err := checkRegistrable(probe.field, existing); err != nil {
			return nil, err
		}
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.CreateUser(ctx, newUserParams(email, username, hash, r)).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("authn: create user: %w", err)
	}
	return p, nil
}

// CheckCredentials is the suspending form of Service.CheckCredentials.
func (s *AsyncService) CheckCredentials(ctx context.Context, identity, password string) *async.Future[*user.Principal] {
	return async.Go(ctx, func(ctx context.Context) (p *user.Principal, err error) {
		ctx, span := s.start(ctx, "CheckCredentials")
		defer func() { s.finish(ctx, span, "CheckCredentials", err) }()
		return s.checkCredentials(ctx, identity, password)
	})
}

func (s *AsyncService) checkCredentials(ctx context.Context, identity, password string) (*user.Principal, error) {
	p, err := found(s.repo.GetByEmailOrUsername(ctx, identity).Await(ctx))
	if err != nil {
		return nil, fmt.Errorf("authn: lookup identity: %w", err)
	}
	ok, err := s.verify(p, password)
	if err != nil {
		return nil, err
	}
	if err := checkCredentials(p, ok); err != nil {
		return nil, err
	}
	return p, nil
}

// Authenticate is the suspending form of Service.Authenticate.
func (s *AsyncService) Authenticate(ctx context.Context, identity, password string) *async.Future[token.Pair] {
	return async.Go(ctx, func(ctx context.Context) (pair token.Pair, err error) {
		ctx, span := s.start(ctx, "Authenticate")
		defer func() { s.finish(ctx, span, "Authenticate", err) }()

		p, err := s.checkCredentials(ctx, identity, password)
		if err != nil {
			return token.Pair{}, err
		}
		observability.SetSpanAttribute(ctx, observability.AttrUserID, p.ID)
		return s.IssueTokens(p)
	})
}

// Refresh is the suspending form of Service.Refresh.
func (s *AsyncService) Refresh(ctx context.Context, refreshToken string) *async.Future[token.Pair] {
	return async.Go(ctx, func(ctx context.Context) (pair token.Pair, err error) {
		ctx, span := s.start(ctx, "Refresh")
		defer func() { s.finish(ctx, span, "Refresh", err) }()

		claims, err := s.codec.Decode(refreshToken, token.Refresh)
		if err != nil {
			return token.Pair{}, err
		}
		if err := s.claim(ctx, claims); err != nil {
			return token.Pair{}, err
		}
		if _, err := s.principal(ctx, claims.SubjectID); err != nil {
			return token.Pair{}, err
		}
		observability.SetSpanAttribute(ctx, observability.AttrUserID, claims.SubjectID)
		return s.refreshed(claims.SubjectID)
	})
}

// IdentifyCurrent is the suspending form of Service.IdentifyCurrent.
func (s *AsyncService) IdentifyCurrent(ctx context.Context, accessToken string) *async.Future[*user.Principal] {
	return async.Go(ctx, func(ctx context.Context) (p *user.Principal, err error) {
		ctx, span := s.start(ctx, "IdentifyCurrent")
		defer func() { s.finish(ctx, span, "IdentifyCurrent", err) }()

		claims, err := s.codec.Decode(accessToken, token.Access)
		if err != nil {
			return nil, err
		}
		return s.principal(ctx, claims.SubjectID)
	})
}

// Logout is the suspending form of Service.Logout.
func (s *AsyncService) Logout(ctx context.Context, refreshToken string) *async.Future[struct{}] {
	return async.Go(ctx, func(ctx context.Context) (_ struct{}, err error) {
		ctx, span := s.start(ctx, "Logout")
		defer func() { s.finish(ctx, span, "Logout", err) }()

		d := s.logoutToken(refreshToken)
		if d == nil {
			return struct{}{}, nil
		}
		return struct{}{}, s.revoke(ctx, d)
	})
}

func (s *AsyncService) principal(ctx context.Context, id int64) (*user.Principal, error) {
	p, err := found(s.repo.GetByID(ctx, id).Await(ctx))
	if err != nil {
		return nil, fmt.Errorf("authn: lookup principal: %w", err)
	}
	if err := s.resolve(ctx, p, id); err != nil {
		return nil, err
	}
	return p, nil
}

// Blocking returns a view of s with the blocking method set of Service.
// Each call awaits the future under the caller's context.
func (s *AsyncService) Blocking() *Blocking {
	return &Blocking{s: s}
}

// Blocking adapts an AsyncService to blocking calls.
type Blocking struct {
	s *AsyncService
}

func (b *Blocking) Register(ctx context.Context, email, username, password string) (*Registration, error) {
	return b.s.Register(ctx, email, username, password).Await(ctx)
}

func (b *Blocking) CreateSuperuser(ctx context.Context, email, username, password string) (*user.Principal, error) {
	return b.s.CreateSuperuser(ctx, email, username, password).Await(ctx)
}

func (b *Blocking) CheckCredentials(ctx context.Context, identity, password string) (*user.Principal, error) {
	return b.s.CheckCredentials(ctx, identity, password).Await(ctx)
}

func (b *Blocking) Authenticate(ctx context.Context, identity, password string) (token.Pair, error) {
	return b.s.Authenticate(ctx, identity, password).Await(ctx)
}

func (b *Blocking) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	return b.s.Refresh(ctx, refreshToken).Await(ctx)
}

func (b *Blocking) IdentifyCurrent(ctx context.Context, accessToken string) (*user.Principal, error) {
	return b.s.IdentifyCurrent(ctx, accessToken).Await(ctx)
}

func (b *Blocking) Logout(ctx context.Context, refreshToken string) error {
	_, err := b.s.Logout(ctx, refreshToken).Await(ctx)
	return err
}
