package hash

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Algorithm names accepted by New.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
	AlgorithmScrypt   = "scrypt"
)

// SaltLength is the salt size in bytes for argon2id and scrypt.
const SaltLength = 16

var (
	// ErrMalformedDigest is returned when a stored digest cannot be parsed.
	ErrMalformedDigest = errors.New("hash: malformed digest")

	// ErrUnknownAlgorithm is returned by New for unsupported algorithms.
	ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

	// ErrEmptyInput is returned when asked to hash an empty string.
	ErrEmptyInput = errors.New("hash: empty input")
)

// Provider hashes and verifies tokens.
type Provider interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// Config selects and tunes a provider.
type Config struct {
	Algorithm  string       `koanf:"algorithm"`
	BcryptCost int          `koanf:"bcrypt_cost"`
	Argon2     Argon2Params `koanf:"argon2"`
	Scrypt     ScryptParams `koanf:"scrypt"`
}

// DefaultConfig returns bcrypt with the default cost.
func DefaultConfig() Config {
	return Config{
		Algorithm:  AlgorithmBcrypt,
		BcryptCost: DefaultBcryptCost,
		Argon2:     DefaultArgon2Params(),
		Scrypt:     DefaultScryptParams(),
	}
}

// New creates the provider named by cfg.Algorithm.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Algorithm) {
	case "", AlgorithmBcrypt:
		return NewBcrypt(cfg.BcryptCost)
	case AlgorithmArgon2id:
		return NewArgon2id(cfg.Argon2)
	case AlgorithmScrypt:
		return NewScrypt(cfg.Scrypt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, cfg.Algorithm)
	}
}

func newSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("hash: read salt: %w", err)
	}
	return salt, nil
}

var b64 = base64.RawStdEncoding
