package hash

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the bcrypt work factor used when none is configured.
const DefaultBcryptCost = 10

// bcryptMaxInput is the longest input bcrypt accepts.
const bcryptMaxInput = 72

// Bcrypt hashes tokens with bcrypt.
type Bcrypt struct {
	Cost int
}

// NewBcrypt creates a bcrypt provider. A zero cost selects DefaultBcryptCost.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("hash: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{Cost: cost}, nil
}

// Hash returns the bcrypt digest of plaintext.
func (h *Bcrypt) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyInput
	}
	digest, err := bcrypt.GenerateFromPassword(prehash(plaintext), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash: bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify compares plaintext with a bcrypt digest.
func (h *Bcrypt) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), prehash(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
}

// prehash keeps inputs longer than bcrypt's limit usable by replacing them
// with their SHA-256 digest, base64 encoded to avoid NUL bytes.
func prehash(plaintext string) []byte {
	if len(plaintext) <= bcryptMaxInput {
		return []byte(plaintext)
	}
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(b64.EncodeToString(sum[:]))
}
