package password

import (
	stderrors "errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/kbukum/authkit/errors"
)

func fastHashers() map[string]Hasher {
	return map[string]Hasher{
		"bcrypt":   NewBcryptHasher(WithCost(bcrypt.MinCost)),
		"argon2id": NewArgon2Hasher(WithArgon2Memory(1024), WithArgon2Threads(1)),
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	for name, h := range fastHashers() {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("pw")
			if err != nil {
				t.Fatalf("Hash: %v", err)
			}
			ok, err := h.Verify("pw", hash)
			if err != nil || !ok {
				t.Fatalf("expected match, got ok=%v err=%v", ok, err)
			}
			ok, err = h.Verify("wrong", hash)
			if err != nil {
				t.Fatalf("mismatch must not error, got %v", err)
			}
			if ok {
				t.Error("expected mismatch")
			}
		})
	}
}

func TestHasher_Salted(t *testing.T) {
	for name, h := range fastHashers() {
		t.Run(name, func(t *testing.T) {
			a, _ := h.Hash("same")
			b, _ := h.Hash("same")
			if a == b {
				t.Error("identical inputs should produce different hashes")
			}
		})
	}
}

func TestHasher_EmptyPassword(t *testing.T) {
	for name, h := range fastHashers() {
		t.Run(name, func(t *testing.T) {
			_, err := h.Hash("")
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestBcrypt_TooLong(t *testing.T) {
	_, err := NewBcryptHasher(WithCost(bcrypt.MinCost)).Hash(strings.Repeat("a", 73))
	if err == nil {
		t.Error("expected error for password over 72 bytes")
	}
}

func TestBcrypt_WithCostIgnoresOutOfRange(t *testing.T) {
	if h := NewBcryptHasher(WithCost(99)); h.cost != DefaultBcryptCost {
		t.Errorf("expected default cost, got %d", h.cost)
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	cases := map[string]struct {
		h    Hasher
		hash string
	}{
		"bcrypt garbage":      {NewBcryptHasher(), "not-a-hash"},
		"bcrypt bad cost":     {NewBcryptHasher(), "$2a$99$abcdefghijklmnopqrstuuabcdefghijklmnopqrstuvwxyz01234"},
		"argon2 wrong parts":  {NewArgon2Hasher(), "$argon2id$v=19$m=1024"},
		"argon2 bad version":  {NewArgon2Hasher(), "$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$a2V5"},
		"argon2 zero threads": {NewArgon2Hasher(), "$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$a2V5"},
		"argon2 bad salt":     {NewArgon2Hasher(), "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5"},
		"argon2 bad params":   {NewArgon2Hasher(), "$argon2id$v=19$x$c2FsdA$a2V5"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := tc.h.Verify("pw", tc.hash)
			if ok {
				t.Error("malformed hash must not verify")
			}
			if !stderrors.Is(err, apperrors.ErrHashMalformed) {
				t.Errorf("expected HASH_MALFORMED, got %v", err)
			}
		})
	}
}

func TestNewHasher_VerifiesBothAlgorithms(t *testing.T) {
	bcryptHash, _ := NewBcryptHasher(WithCost(bcrypt.MinCost)).Hash("pw")
	argonHash, _ := NewArgon2Hasher(WithArgon2Memory(1024), WithArgon2Threads(1)).Hash("pw")

	h := NewHasher(Config{Algorithm: AlgorithmArgon2id, Argon2Memory: 1024, Argon2Threads: 1})
	for _, stored := range []string{bcryptHash, argonHash} {
		ok, err := h.Verify("pw", stored)
		if err != nil || !ok {
			t.Errorf("expected %q to verify, got ok=%v err=%v", stored[:10], ok, err)
		}
	}

	fresh, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if Detect(fresh) != AlgorithmArgon2id {
		t.Errorf("expected argon2id hash, got %q", fresh)
	}

	if _, err := h.Verify("pw", "plain-text"); !stderrors.Is(err, apperrors.ErrHashMalformed) {
		t.Errorf("unknown prefix should be malformed, got %v", err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		hash string
		want Algorithm
	}{
		{"$2a$12$xyz", AlgorithmBcrypt},
		{"$2b$12$xyz", AlgorithmBcrypt},
		{"$2y$12$xyz", AlgorithmBcrypt},
		{"$argon2id$v=19$...", AlgorithmArgon2id},
		{"$argon2i$v=19$...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Detect(tt.hash); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.hash, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Algorithm = "md5"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
	cfg = Config{BcryptCost: 2}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for low bcrypt cost")
	}
}
