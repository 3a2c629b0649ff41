// Package token issues and decodes signed access and refresh tokens.
//
// Tokens are HMAC-signed JWTs carrying sub, type, iat, exp and jti. Decoding
// checks, in order: structure, signature, expiry and kind. A token is valid
// while now < exp; at exp it is already expired.
package token

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/settings"
)

// Codec issues and decodes tokens for one Settings value.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	method     gojwt.SigningMethod
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	newID      func() string
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithIDGenerator overrides the jti generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Codec) { c.newID = fn }
}

// NewCodec creates a codec from validated settings.
func NewCodec(s settings.Settings, opts ...Option) (*Codec, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	c := &Codec{
		method:     signingMethod(s.Algorithm),
		key:        []byte(s.SecretKey),
		issuer:     s.Issuer,
		accessTTL:  s.AccessTTL,
		refreshTTL: s.RefreshTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured lifetime for kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	if kind == Refresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue signs a token for subject that expires ttl from now.
func (c *Codec) Issue(subject int64, kind Kind, ttl time.Duration) (string, error) {
	if !kind.Valid() {
		return "", apperrors.InvalidInput("kind", fmt.Sprintf("unknown token kind %q", kind))
	}
	if ttl < settings.MinTTL {
		return "", apperrors.InvalidInput("ttl", fmt.Sprintf("ttl must be at least %s", settings.MinTTL))
	}
	now := c.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   formatSubject(subject),
			Issuer:    c.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(ceilSecond(now.Add(ttl))),
			ID:        c.newID(),
		},
		Type: kind,
	}
	signed, err := gojwt.NewWithClaims(c.method, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// IssuePair issues an access and a refresh token for subject using the
// configured lifetimes.
func (c *Codec) IssuePair(subject int64) (Pair, error) {
	access, err := c.Issue(subject, Access, c.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := c.Issue(subject, Refresh, c.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Decode verifies tok and checks that it is of the expected kind.
func (c *Codec) Decode(tok string, expected Kind) (*Decoded, error) {
	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(tok, claims, c.keyFunc, c.parserOptions()...)
	if err != nil {
		return nil, mapParseError(err)
	}

	// golang-jwt v5 already rejects now == exp; this keeps the boundary
	// independent of the parser's leeway handling.
	if !c.now().Before(claims.ExpiresAt.Time) {
		return nil, apperrors.TokenExpired()
	}
	if claims.Type == "" {
		return nil, apperrors.TokenMalformed(errors.New("missing type claim"))
	}
	if claims.Type != expected {
		return nil, apperrors.TokenKindMismatch(expected.String(), claims.Type.String())
	}
	id, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, apperrors.TokenMalformed(err)
	}

	d := &Decoded{
		SubjectID: id,
		Kind:      claims.Type,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		d.IssuedAt = claims.IssuedAt.Time
	}
	return d, nil
}

func (c *Codec) keyFunc(t *gojwt.Token) (interface{}, error) {
	if t.Method.Alg() != c.method.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
	}
	return c.key, nil
}

func (c *Codec) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{c.method.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(c.issuer))
	}
	return opts
}

// ceilSecond rounds t up to a whole second. NumericDate truncates, which
// would otherwise shorten the lifetime by up to a second.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrTokenUnverifiable):
		return apperrors.TokenInvalidSignature()
	case errors.Is(err, gojwt.ErrTokenExpired):
		return apperrors.TokenExpired()
	default:
		return apperrors.TokenMalformed(err)
	}
}

func signingMethod(a settings.Algorithm) gojwt.SigningMethod {
	switch a {
	case settings.HS384:
		return gojwt.SigningMethodHS384
	case settings.HS512:
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}
