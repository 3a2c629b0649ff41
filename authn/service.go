package authn

import (
	"context"
	"fmt"

	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/observability"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/token"
	"github.com/kbukum/authkit/user"
)

// Service runs the auth flows against a blocking repository.
// It is safe for concurrent use.
type Service struct {
	*engine
	repo user.Repository
}

// New creates a blocking service.
func New(s settings.Settings, repo user.Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("authn: repository is required")
	}
	e, err := newEngine(s, opts)
	if err != nil {
		return nil, err
	}
	return &Service{engine: e, repo: repo}, nil
}

// Register creates an active, unprivileged principal and, when configured,
// issues its first token pair.
func (s *Service) Register(ctx context.Context, email, username, password string) (reg *Registration, err error) {
	ctx, span := s.start(ctx, "Register")
	defer func() { s.finish(ctx, span, "Register", err) }()

	p, err := s.createUser(ctx, email, username, password, roleUser)
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrUserID, p.ID)
	s.log.WithContext(ctx).Info("principal registered", logger.Fields(logger.FieldUserID, p.ID))
	return s.registration(p)
}

// CreateSuperuser creates an active staff superuser. It never issues tokens.
func (s *Service) CreateSuperuser(ctx context.Context, email, username, password string) (p *user.Principal, err error) {
	ctx, span := s.start(ctx, "CreateSuperuser")
	defer func() { s.finish(ctx, span, "CreateSuperuser", err) }()

	p, err = s.createUser(ctx, email, username, password, roleSuperuser)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("superuser created", logger.Fields(logger.FieldUserID, p.ID))
	return p, nil
}

func (s *Service) createUser(ctx context.Context, email, username, password string, r role) (*user.Principal, error) {
	if err := validateRegistration(email, username, password); err != nil {
		return nil, err
	}
	for _, probe := range identityProbes(email, username) {
		existing, err := found(s.repo.GetByEmailOrUsername(ctx, probe.value))
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
	p, err := s.repo.CreateUser(ctx, newUserParams(email, username, hash, r))
	if err != nil {
		return nil, fmt.Errorf("authn: create user: %w", err)
	}
	return p, nil
}

// CheckCredentials resolves identity (email or username) and verifies password.
func (s *Service) CheckCredentials(ctx context.Context, identity, password string) (p *user.Principal, err error) {
	ctx, span := s.start(ctx, "CheckCredentials")
	defer func() { s.finish(ctx, span, "CheckCredentials", err) }()
	return s.checkCredentials(ctx, identity, password)
}

func (s *Service) checkCredentials(ctx context.Context, identity, password string) (*user.Principal, error) {
	p, err := found(s.repo.GetByEmailOrUsername(ctx, identity))
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

// Authenticate checks credentials and issues an access/refresh pair.
func (s *Service) Authenticate(ctx context.Context, identity, password string) (pair token.Pair, err error) {
	ctx, span := s.start(ctx, "Authenticate")
	defer func() { s.finish(ctx, span, "Authenticate", err) }()

	p, err := s.checkCredentials(ctx, identity, password)
	if err != nil {
		return token.Pair{}, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrUserID, p.ID)
	return s.IssueTokens(p)
}

// Refresh exchanges a refresh token for a new pair. The presented token stays
// valid unless RevokeOnRotation is set and a denylist is attached.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (pair token.Pair, err error) {
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
}

// IdentifyCurrent returns the principal an access token belongs to.
func (s *Service) IdentifyCurrent(ctx context.Context, accessToken string) (p *user.Principal, err error) {
	ctx, span := s.start(ctx, "IdentifyCurrent")
	defer func() { s.finish(ctx, span, "IdentifyCurrent", err) }()

	claims, err := s.codec.Decode(accessToken, token.Access)
	if err != nil {
		return nil, err
	}
	return s.principal(ctx, claims.SubjectID)
}

// Logout revokes refreshToken when a denylist is attached. It does not fail
// on a missing or invalid token.
func (s *Service) Logout(ctx context.Context, refreshToken string) (err error) {
	ctx, span := s.start(ctx, "Logout")
	defer func() { s.finish(ctx, span, "Logout", err) }()

	d := s.logoutToken(refreshToken)
	if d == nil {
		return nil
	}
	return s.revoke(ctx, d)
}

func (s *Service) principal(ctx context.Context, id int64) (*user.Principal, error) {
	p, err := found(s.repo.GetByID(ctx, id))
	if err != nil {
		return nil, fmt.Errorf("authn: lookup principal: %w", err)
	}
	if err := s.resolve(ctx, p, id); err != nil {
		return nil, err
	}
	return p, nil
}
