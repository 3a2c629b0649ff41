// Package settings holds the immutable configuration shared by every authkit
// component: signing secret and algorithm, token lifetimes, extraction
// toggles and cookie attributes.
//
// Settings are built once, validated, and then passed by value. Components
// keep their own copy, so later mutation of the caller's value has no effect.
package settings

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Algorithm is a supported HMAC signing algorithm.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
)

// SameSite mirrors the cookie SameSite attribute.
type SameSite string

const (
	SameSiteLax    SameSite = "lax"
	SameSiteStrict SameSite = "strict"
	SameSiteNone   SameSite = "none"
)

// HTTP maps the value to net/http's representation.
func (s SameSite) HTTP() http.SameSite {
	switch s {
	case SameSiteStrict:
		return http.SameSiteStrictMode
	case SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Defaults.
const (
	DefaultAlgorithm           = HS256
	DefaultAccessTTL           = 15 * time.Minute
	DefaultRefreshTTL          = 7 * 24 * time.Hour
	DefaultCookieNameAccess    = "access_token"
	DefaultCookieNameRefresh   = "refresh_token"
	DefaultCookieMaxAgeAccess  = 900
	DefaultCookieMaxAgeRefresh = 604800
	DefaultCookieSameSite      = SameSiteLax
	DefaultCookiePath          = "/"
)

// MinTTL is the shortest token lifetime. exp is encoded in whole seconds.
const MinTTL = time.Second

// Settings is the validated configuration value.
type Settings struct {
	SecretKey  string
	Algorithm  Algorithm
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string

	AcceptHeader     bool
	AcceptCookie     bool
	SetCookieOnLogin bool

	CookieNameAccess    string
	CookieNameRefresh   string
	CookieMaxAgeAccess  int
	CookieMaxAgeRefresh int
	CookieSecure        bool
	CookieSameSite      SameSite
	CookiePath          string
	CookieDomain        string

	// IssueTokensOnRegister makes Register return a token pair.
	IssueTokensOnRegister bool
	// RevokeOnRotation denies a refresh token once it has been exchanged.
	// It only takes effect when the service has a denylist.
	RevokeOnRotation bool
	// RefreshRotation makes Refresh issue a new refresh token alongside the
	// access token. When off, the presented refresh token stays in use.
	RefreshRotation bool
}

// Default returns settings populated with every default except the secret.
func Default() Settings {
	return Settings{
		Algorithm:             DefaultAlgorithm,
		AccessTTL:             DefaultAccessTTL,
		RefreshTTL:            DefaultRefreshTTL,
		AcceptHeader:          true,
		AcceptCookie:          true,
		SetCookieOnLogin:      true,
		CookieNameAccess:      DefaultCookieNameAccess,
		CookieNameRefresh:     DefaultCookieNameRefresh,
		CookieMaxAgeAccess:    DefaultCookieMaxAgeAccess,
		CookieMaxAgeRefresh:   DefaultCookieMaxAgeRefresh,
		CookieSecure:          true,
		CookieSameSite:        DefaultCookieSameSite,
		CookiePath:            DefaultCookiePath,
		IssueTokensOnRegister: true,
		RefreshRotation:       true,
	}
}

// Option mutates settings during construction.
type Option func(*Settings)

// New builds validated settings from the defaults, the secret and opts.
func New(secret string, opts ...Option) (Settings, error) {
	s := Default()
	s.SecretKey = secret
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// MustNew is like New but panics on invalid settings.
func MustNew(secret string, opts ...Option) Settings {
	s, err := New(secret, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func WithAlgorithm(a Algorithm) Option { return func(s *Settings) { s.Algorithm = a } }
func WithAccessTTL(d time.Duration) Option { return func(s *Settings) { s.AccessTTL = d } }
func WithRefreshTTL(d time.Duration) Option { return func(s *Settings) { s.RefreshTTL = d } }
func WithIssuer(iss string) Option { return func(s *Settings) { s.Issuer = iss } }
func WithAcceptHeader(on bool) Option { return func(s *Settings) { s.AcceptHeader = on } }
func WithAcceptCookie(on bool) Option { return func(s *Settings) { s.AcceptCookie = on } }
func WithSetCookieOnLogin(on bool) Option { return func(s *Settings) { s.SetCookieOnLogin = on } }
func WithCookieSecure(on bool) Option { return func(s *Settings) { s.CookieSecure = on } }
func WithCookieSameSite(v SameSite) Option { return func(s *Settings) { s.CookieSameSite = v } }
func WithIssueTokensOnRegister(on bool) Option { return func(s *Settings) { s.IssueTokensOnRegister = on } }
func WithRevokeOnRotation(on bool) Option { return func(s *Settings) { s.RevokeOnRotation = on } }
func WithRefreshRotation(on bool) Option { return func(s *Settings) { s.RefreshRotation = on } }

// WithCookieNames overrides the access and refresh cookie names.
func WithCookieNames(access, refresh string) Option {
	return func(s *Settings) {
		s.CookieNameAccess = access
		s.CookieNameRefresh = refresh
	}
}

// Validate checks the settings for values no component can work with.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.SecretKey) == "" {
		return fmt.Errorf("settings: secret_key is required")
	}
	switch s.Algorithm {
	case HS256, HS384, HS512:
	default:
		return fmt.Errorf("settings: unsupported algorithm %q", s.Algorithm)
	}
	if s.AccessTTL <= 0 {
		return fmt.Errorf("settings: access_ttl must be positive (got: %s)", s.AccessTTL)
	}
	if s.AccessTTL < MinTTL {
		return fmt.Errorf("settings: access_ttl must be at least %s (got: %s)", MinTTL, s.AccessTTL)
	}
	if s.RefreshTTL <= 0 {
		return fmt.Errorf("settings: refresh_ttl must be positive (got: %s)", s.RefreshTTL)
	}
	if s.RefreshTTL < MinTTL {
		return fmt.Errorf("settings: refresh_ttl must be at least %s (got: %s)", MinTTL, s.RefreshTTL)
	}
	if s.CookieNameAccess == "" || s.CookieNameRefresh == "" {
		return fmt.Errorf("settings: cookie names must not be empty")
	}
	if s.CookieNameAccess == s.CookieNameRefresh {
		return fmt.Errorf("settings: access and refresh cookie names must differ")
	}
	if s.CookieMaxAgeAccess < 0 || s.CookieMaxAgeRefresh < 0 {
		return fmt.Errorf("settings: cookie max ages must not be negative")
	}
	switch s.CookieSameSite {
	case SameSiteLax, SameSiteStrict, SameSiteNone:
	default:
		return fmt.Errorf("settings: unsupported cookie_samesite %q", s.CookieSameSite)
	}
	if s.CookieSameSite == SameSiteNone && !s.CookieSecure {
		return fmt.Errorf("settings: cookie_samesite=none requires cookie_secure")
	}
	return nil
}

// Warnings lists valid but probably unintended combinations.
func (s Settings) Warnings() []string {
	var w []string
	if !s.AcceptHeader && !s.AcceptCookie {
		w = append(w, "header and cookie extraction are both disabled; only request bodies can carry refresh tokens and access tokens cannot be extracted")
	}
	if s.RevokeOnRotation && !s.AcceptCookie && !s.AcceptHeader {
		w = append(w, "revoke_on_rotation is set but refresh tokens can only arrive in bodies")
	}
	if s.RevokeOnRotation && !s.RefreshRotation {
		w = append(w, "revoke_on_rotation has no effect while refresh_rotation is off")
	}
	if len(s.SecretKey) < 32 {
		w = append(w, "secret_key is shorter than 32 bytes")
	}
	return w
}

// Describe returns a log-safe summary. The secret is never included.
func (s Settings) Describe() map[string]interface{} {
	return map[string]interface{}{
		"algorithm":                s.Algorithm,
		"access_ttl":               s.AccessTTL.String(),
		"refresh_ttl":              s.RefreshTTL.String(),
		"accept_header":            s.AcceptHeader,
		"accept_cookie":            s.AcceptCookie,
		"set_cookie_on_login":      s.SetCookieOnLogin,
		"cookie_secure":            s.CookieSecure,
		"cookie_samesite":          s.CookieSameSite,
		"issue_tokens_on_register": s.IssueTokensOnRegister,
		"revoke_on_rotation":       s.RevokeOnRotation,
		"refresh_rotation":         s.RefreshRotation,
	}
}
