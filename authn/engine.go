package authn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/observability"
	"github.com/kbukum/authkit/password"
	"github.com/kbukum/authkit/revocation"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/token"
	"github.com/kbukum/authkit/user"
)

// dummyPassword is hashed once and verified against when an identity is
// unknown, so a miss costs as much as a wrong password.
const dummyPassword = "authkit-timing-guard"

// Registration is the result of Register. Tokens is nil when the settings
// do not issue tokens on register.
type Registration struct {
	Principal *user.Principal
	Tokens    *token.Pair
}

// Option configures Service and AsyncService.
type Option func(*options)

type options struct {
	hasher    password.Hasher
	denylist  revocation.Denylist
	log       *logger.Logger
	codecOpts []token.Option
	meter     metric.Meter
}

// WithHasher sets the password hasher. The default is bcrypt at cost 12.
func WithHasher(h password.Hasher) Option {
	return func(o *options) { o.hasher = h }
}

// WithDenylist attaches a refresh-token denylist. It is consulted on every
// refresh and written by Logout, and by Refresh when RevokeOnRotation is set.
func WithDenylist(d revocation.Denylist) Option {
	return func(o *options) { o.denylist = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithCodecOptions passes options to the token codec, e.g. token.WithClock.
func WithCodecOptions(opts ...token.Option) Option {
	return func(o *options) { o.codecOpts = append(o.codecOpts, opts...) }
}

// WithMeter sets the meter operation counters are recorded on. The default is
// the global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// engine holds the side-effect-free collaborators shared by both variants.
type engine struct {
	settings settings.Settings
	codec    *token.Codec
	hasher   password.Hasher
	denylist revocation.Denylist
	log      *logger.Logger
	metrics  *observability.Metrics

	dummyOnce sync.Once
	dummyHash string
}

func newEngine(s settings.Settings, opts []Option) (*engine, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasher == nil {
		o.hasher = password.NewBcryptHasher()
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	if o.meter == nil {
		o.meter = observability.Meter(observability.MeterName)
	}
	codec, err := token.NewCodec(s, o.codecOpts...)
	if err != nil {
		return nil, fmt.Errorf("authn: %w", err)
	}
	metrics, err := observability.NewMetrics(o.meter)
	if err != nil {
		return nil, fmt.Errorf("authn: %w", err)
	}
	return &engine{
		settings: s,
		codec:    codec,
		hasher:   o.hasher,
		denylist: o.denylist,
		log:      o.log.WithComponent("authn"),
		metrics:  metrics,
	}, nil
}

// Codec exposes the token codec, e.g. for issuing tokens in tests.
func (e *engine) Codec() *token.Codec { return e.codec }

// Settings returns the settings the service was built with.
func (e *engine) Settings() settings.Settings { return e.settings }

// IssueTokens issues an access/refresh pair for p.
func (e *engine) IssueTokens(p *user.Principal) (token.Pair, error) {
	return e.issue(p.ID)
}

func (e *engine) issue(id int64) (token.Pair, error) {
	pair, err := e.codec.IssuePair(id)
	if err != nil {
		return token.Pair{}, fmt.Errorf("authn: issue tokens: %w", err)
	}
	return pair, nil
}

func (e *engine) hash(password string) (string, error) {
	h, err := e.hasher.Hash(password)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return "", appErr
		}
		return "", fmt.Errorf("authn: hash password: %w", err)
	}
	return h, nil
}

// verify checks password against p's hash. With no principal it burns a
// verification against the dummy hash and reports a mismatch.
func (e *engine) verify(p *user.Principal, password string) (bool, error) {
	if p == nil {
		if dummy := e.dummy(); dummy != "" {
			_, _ = e.hasher.Verify(password, dummy)
		}
		return false, nil
	}
	return e.hasher.Verify(password, p.PasswordHash)
}

func (e *engine) dummy() string {
	e.dummyOnce.Do(func() {
		h, err := e.hasher.Hash(dummyPassword)
		if err != nil {
			e.log.Warn("timing guard hash unavailable", logger.ErrorFields("hash", err))
			return
		}
		e.dummyHash = h
	})
	return e.dummyHash
}

// registration builds the Register result, issuing tokens when configured.
func (e *engine) registration(p *user.Principal) (*Registration, error) {
	reg := &Registration{Principal: p}
	if !e.settings.IssueTokensOnRegister {
		return reg, nil
	}
	pair, err := e.IssueTokens(p)
	if err != nil {
		return nil, err
	}
	reg.Tokens = &pair
	return reg, nil
}

func (e *engine) checkNotRevoked(ctx context.Context, d *token.Decoded) error {
	if e.denylist == nil || d.ID == "" {
		return nil
	}
	revoked, err := e.denylist.IsRevoked(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("authn: denylist lookup: %w", err)
	}
	if revoked {
		return apperrors.TokenRevoked()
	}
	return nil
}

// revoke denies d's jti until the token would have expired anyway.
func (e *engine) revoke(ctx context.Context, d *token.Decoded) error {
	if e.denylist == nil || d.ID == "" {
		return nil
	}
	if err := e.denylist.Revoke(ctx, d.ID, d.ExpiresAt); err != nil {
		return fmt.Errorf("authn: revoke: %w", err)
	}
	return nil
}

// resolve applies resolvePrincipal. The subject id of a missing principal is
// logged and kept out of the error.
func (e *engine) resolve(ctx context.Context, p *user.Principal, id int64) error {
	err := resolvePrincipal(p)
	if p == nil {
		e.log.WithContext(ctx).Debug("token subject not found", logger.Fields(logger.FieldUserID, id))
	}
	return err
}

// refreshed issues the Refresh result: a full pair with rotation, otherwise
// an access token only.
func (e *engine) refreshed(id int64) (token.Pair, error) {
	if e.settings.RefreshRotation {
		return e.issue(id)
	}
	access, err := e.codec.Issue(id, token.Access, e.codec.TTL(token.Access))
	if err != nil {
		return token.Pair{}, fmt.Errorf("authn: issue tokens: %w", err)
	}
	return token.Pair{AccessToken: access}, nil
}

// claim admits a refresh token for rotation. With RevokeOnRotation the token
// is revoked in the same atomic step that checks it, so concurrent refreshes
// with one token yield one new pair.
func (e *engine) claim(ctx context.Context, d *token.Decoded) error {
	if !e.settings.RevokeOnRotation || !e.settings.RefreshRotation || e.denylist == nil || d.ID == "" {
		return e.checkNotRevoked(ctx, d)
	}
	won, err := e.denylist.RevokeIfAbsent(ctx, d.ID, d.ExpiresAt)
	if err != nil {
		return fmt.Errorf("authn: revoke: %w", err)
	}
	if !won {
		return apperrors.TokenRevoked()
	}
	return nil
}

// logoutToken decodes a refresh token for Logout. Anything that is not a
// currently valid refresh token needs no revocation.
func (e *engine) logoutToken(refreshToken string) *token.Decoded {
	if e.denylist == nil || refreshToken == "" {
		return nil
	}
	d, err := e.codec.Decode(refreshToken, token.Refresh)
	if err != nil {
		return nil
	}
	return d
}

// start opens the span for op.
func (e *engine) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return observability.StartSpan(ctx, "authn."+op)
}

// finish tags the span with the error code, ends it, then logs and counts
// the outcome.
func (e *engine) finish(ctx context.Context, span trace.Span, op string, err error) {
	switch appErr, ok := apperrors.AsAppError(err); {
	case err == nil:
		e.metrics.RecordOperation(ctx, "authn", op, observability.OutcomeOK, "")
	case ok:
		span.SetAttributes(attribute.String(observability.AttrErrorCode, string(appErr.Code)))
		e.log.WithContext(ctx).Debug(op+" rejected", logger.Fields(logger.FieldOperation, op, logger.FieldStatus, string(appErr.Code)))
		e.metrics.RecordOperation(ctx, "authn", op, observability.OutcomeRejected, string(appErr.Code))
	default:
		e.log.WithContext(ctx).Error(op+" failed", logger.ErrorFields(op, err))
		e.metrics.RecordOperation(ctx, "authn", op, observability.OutcomeError, "")
		e.metrics.RecordError(ctx, "authn", op)
	}
	observability.EndSpan(span, err)
}
