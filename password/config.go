package password

import (
	"fmt"
	"strings"

	apperrors "github.com/kbukum/authkit/errors"
)

// Algorithm represents supported password hashing algorithms.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

const argon2Prefix = "$argon2id$"

// Config configures password hashing behavior.
type Config struct {
	// Algorithm selects the algorithm used for new hashes (default: "bcrypt").
	Algorithm Algorithm `yaml:"algorithm" mapstructure:"algorithm"`

	// BcryptCost is the bcrypt cost parameter (default: 12, range: 4-31).
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`

	Argon2Time    uint32 `yaml:"argon2_time" mapstructure:"argon2_time"`
	Argon2Memory  uint32 `yaml:"argon2_memory" mapstructure:"argon2_memory"`
	Argon2Threads uint8  `yaml:"argon2_threads" mapstructure:"argon2_threads"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("password: unsupported algorithm: %s (use bcrypt or argon2id)", c.Algorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("password: bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	return nil
}

// Detect returns the algorithm that produced hash, or "" if unknown.
func Detect(hash string) Algorithm {
	switch {
	case strings.HasPrefix(hash, argon2Prefix):
		return AlgorithmArgon2id
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return AlgorithmBcrypt
	default:
		return ""
	}
}

// NewHasher creates a Hasher from configuration. New hashes use the
// configured algorithm; verification accepts hashes of either algorithm so
// stored credentials survive an algorithm switch.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	bc := NewBcryptHasher(WithCost(cfg.BcryptCost))
	a2 := NewArgon2Hasher(
		WithArgon2Time(cfg.Argon2Time),
		WithArgon2Memory(cfg.Argon2Memory),
		WithArgon2Threads(cfg.Argon2Threads),
	)
	m := &multiHasher{verifiers: map[Algorithm]Hasher{
		AlgorithmBcrypt:   bc,
		AlgorithmArgon2id: a2,
	}}
	m.primary = m.verifiers[cfg.Algorithm]
	if m.primary == nil {
		m.primary = bc
	}
	return m
}

type multiHasher struct {
	primary   Hasher
	verifiers map[Algorithm]Hasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multiHasher) Verify(password, hash string) (bool, error) {
	h, ok := m.verifiers[Detect(hash)]
	if !ok {
		return false, apperrors.HashMalformed(fmt.Errorf("unrecognized hash prefix"))
	}
	return h.Verify(password, hash)
}
