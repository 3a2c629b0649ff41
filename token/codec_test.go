package token

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/settings"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCodec(t *testing.T, opts ...settings.Option) (*Codec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: t0}
	c, err := NewCodec(settings.MustNew("s", opts...), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c, clock
}

func signRaw(t *testing.T, secret string, claims gojwt.Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestCodec_RoundTrip(t *testing.T) {
	c, _ := newTestCodec(t)
	for _, kind := range []Kind{Access, Refresh} {
		t.Run(kind.String(), func(t *testing.T) {
			tok, err := c.Issue(42, kind, time.Minute)
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			d, err := c.Decode(tok, kind)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if d.SubjectID != 42 || d.Kind != kind {
				t.Errorf("unexpected decoded value %+v", d)
			}
			if !d.IssuedAt.Equal(t0) || !d.ExpiresAt.Equal(t0.Add(time.Minute)) {
				t.Errorf("unexpected times iat=%s exp=%s", d.IssuedAt, d.ExpiresAt)
			}
			if d.ID == "" {
				t.Error("expected a jti")
			}
		})
	}
}

func TestCodec_KindMismatch(t *testing.T) {
	c, _ := newTestCodec(t)
	access, _ := c.Issue(1, Access, time.Minute)
	refresh, _ := c.Issue(1, Refresh, time.Minute)

	if _, err := c.Decode(access, Refresh); !stderrors.Is(err, apperrors.ErrTokenKindMismatch) {
		t.Errorf("access as refresh: expected TOKEN_KIND_MISMATCH, got %v", err)
	}
	if _, err := c.Decode(refresh, Access); !stderrors.Is(err, apperrors.ErrTokenKindMismatch) {
		t.Errorf("refresh as access: expected TOKEN_KIND_MISMATCH, got %v", err)
	}
}

func TestCodec_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		wantErr bool
	}{
		{"before expiry", 59 * time.Second, false},
		{"exactly at expiry", time.Minute, true},
		{"after expiry", time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newTestCodec(t)
			tok, _ := c.Issue(1, Access, time.Minute)
			clock.Advance(tt.advance)
			_, err := c.Decode(tok, Access)
			if tt.wantErr {
				if !stderrors.Is(err, apperrors.ErrTokenExpired) {
					t.Errorf("expected TOKEN_EXPIRED, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCodec_InvalidSignature(t *testing.T) {
	c, _ := newTestCodec(t)
	other, err := NewCodec(settings.MustNew("other"), WithClock(func() time.Time { return t0 }))
	if err != nil {
		t.Fatal(err)
	}
	tok, _ := other.Issue(1, Access, time.Minute)
	if _, err := c.Decode(tok, Access); !stderrors.Is(err, apperrors.ErrTokenInvalidSignature) {
		t.Errorf("expected TOKEN_INVALID_SIGNATURE, got %v", err)
	}

	tampered := tok[:len(tok)-2] + "xx"
	if _, err := other.Decode(tampered, Access); err == nil {
		t.Error("tampered token must not decode")
	}
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	c, _ := newTestCodec(t)
	hs512, _ := NewCodec(settings.MustNew("s", settings.WithAlgorithm(settings.HS512)),
		WithClock(func() time.Time { return t0 }))
	tok, _ := hs512.Issue(1, Access, time.Minute)
	if _, err := c.Decode(tok, Access); !stderrors.Is(err, apperrors.ErrTokenInvalidSignature) {
		t.Errorf("expected TOKEN_INVALID_SIGNATURE for HS512 token, got %v", err)
	}

	none, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "1", ExpiresAt: gojwt.NewNumericDate(t0.Add(time.Hour))},
		Type:             Access,
	}).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode(none, Access); !stderrors.Is(err, apperrors.ErrTokenInvalidSignature) {
		t.Errorf("expected alg=none to be rejected as invalid signature, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	c, _ := newTestCodec(t)
	exp := gojwt.NewNumericDate(t0.Add(time.Hour))

	cases := map[string]string{
		"empty":           "",
		"garbage":         "not.a.jwt",
		"two segments":    "abc.def",
		"non numeric sub": signRaw(t, "s", &Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}, Type: Access}),
		"missing sub":     signRaw(t, "s", &Claims{RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: exp}, Type: Access}),
		"missing type":    signRaw(t, "s", &Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}}),
		"missing exp":     signRaw(t, "s", &Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "1"}, Type: Access}),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Decode(tok, Access); !stderrors.Is(err, apperrors.ErrTokenMalformed) {
				t.Errorf("expected TOKEN_MALFORMED, got %v", err)
			}
		})
	}
}

func TestCodec_Issuer(t *testing.T) {
	c, _ := newTestCodec(t, settings.WithIssuer("authkit"))
	tok, _ := c.Issue(3, Access, time.Minute)
	if _, err := c.Decode(tok, Access); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	plain, _ := newTestCodec(t)
	foreign, _ := plain.Issue(3, Access, time.Minute)
	if _, err := c.Decode(foreign, Access); err == nil {
		t.Error("expected token without issuer to be rejected")
	}
}

func TestCodec_IssueValidation(t *testing.T) {
	c, _ := newTestCodec(t)
	if _, err := c.Issue(1, Access, 0); err == nil {
		t.Error("expected error for zero ttl")
	}
	if _, err := c.Issue(1, "id", time.Minute); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := c.Issue(1, Access, 500*time.Millisecond); !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for a sub-second ttl, got %v", err)
	}
}

func TestCodec_ShortestTTLRoundTrips(t *testing.T) {
	c, clock := newTestCodec(t)
	clock.now = t0.Add(900 * time.Millisecond)
	tok, err := c.Issue(42, Access, settings.MinTTL)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	clock.Advance(100 * time.Millisecond)
	d, err := c.Decode(tok, Access)
	if err != nil {
		t.Fatalf("a token with the shortest ttl should decode right after issue: %v", err)
	}
	if !d.ExpiresAt.Equal(t0.Add(2 * time.Second)) {
		t.Errorf("exp should round up to the next second, got %s", d.ExpiresAt)
	}
	clock.now = t0.Add(2 * time.Second)
	if _, err := c.Decode(tok, Access); !apperrors.HasCode(err, apperrors.ErrCodeTokenExpired) {
		t.Errorf("expected TOKEN_EXPIRED at exp, got %v", err)
	}
}

func TestCodec_IssuePair(t *testing.T) {
	c, _ := newTestCodec(t, settings.WithAccessTTL(15*time.Minute), settings.WithRefreshTTL(7*24*time.Hour))
	pair, err := c.IssuePair(7)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens must differ")
	}
	a, err := c.Decode(pair.AccessToken, Access)
	if err != nil || a.SubjectID != 7 {
		t.Fatalf("access decode: %+v %v", a, err)
	}
	r, err := c.Decode(pair.RefreshToken, Refresh)
	if err != nil || r.SubjectID != 7 {
		t.Fatalf("refresh decode: %+v %v", r, err)
	}
	if got := a.ExpiresAt.Sub(a.IssuedAt); got != 15*time.Minute {
		t.Errorf("access ttl = %s", got)
	}
	if got := r.ExpiresAt.Sub(r.IssuedAt); got != 7*24*time.Hour {
		t.Errorf("refresh ttl = %s", got)
	}
	if a.ID == r.ID {
		t.Error("expected distinct jti values")
	}
	if c.TTL(Refresh) != 7*24*time.Hour || c.TTL(Access) != 15*time.Minute {
		t.Error("TTL accessor mismatch")
	}
}

func TestCodec_WithIDGenerator(t *testing.T) {
	c, err := NewCodec(settings.MustNew("s"), WithIDGenerator(func() string { return "fixed" }))
	if err != nil {
		t.Fatal(err)
	}
	tok, _ := c.Issue(1, Refresh, time.Minute)
	d, err := c.Decode(tok, Refresh)
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "fixed" {
		t.Errorf("expected jti=fixed, got %q", d.ID)
	}
}

func TestNewCodec_InvalidSettings(t *testing.T) {
	_, err := NewCodec(settings.Settings{})
	if err == nil || !strings.Contains(err.Error(), "secret_key") {
		t.Errorf("expected secret validation error, got %v", err)
	}
}
