package hash

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// ScryptParams tunes the scrypt provider. N is 1<<LogN.
type ScryptParams struct {
	LogN   uint8 `koanf:"log_n"`
	R      int   `koanf:"r"`
	P      int   `koanf:"p"`
	KeyLen int   `koanf:"key_len"`
}

// DefaultScryptParams returns N=2^15, r=8, p=1.
func DefaultScryptParams() ScryptParams {
	return ScryptParams{LogN: 15, R: 8, P: 1, KeyLen: 32}
}

// Scrypt hashes tokens with scrypt.
type Scrypt struct {
	params ScryptParams
}

// NewScrypt creates a scrypt provider.
func NewScrypt(p ScryptParams) (*Scrypt, error) {
	if p.LogN < 1 || p.LogN > 30 || p.R <= 0 || p.P <= 0 || p.KeyLen < 16 {
		return nil, fmt.Errorf("hash: invalid scrypt parameters %+v", p)
	}
	return &Scrypt{params: p}, nil
}

// Hash returns $scrypt$ln=<logN>,r=<r>,p=<p>$<salt>$<key>.
func (h *Scrypt) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyInput
	}
	salt, err := newSalt()
	if err != nil {
		return "", err
	}
	p := h.params
	key, err := scrypt.Key([]byte(plaintext), salt, 1<<p.LogN, p.R, p.P, p.KeyLen)
	if err != nil {
		return "", fmt.Errorf("hash: scrypt: %w", err)
	}
	return fmt.Sprintf("$scrypt$ln=%d,r=%d,p=%d$%s$%s",
		p.LogN, p.R, p.P, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify recomputes the key with the digest's own parameters and salt.
func (h *Scrypt) Verify(plaintext, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 5 || parts[1] != AlgorithmScrypt {
		return false, ErrMalformedDigest
	}

	var p ScryptParams
	if _, err := fmt.Sscanf(parts[2], "ln=%d,r=%d,p=%d", &p.LogN, &p.R, &p.P); err != nil {
		return false, ErrMalformedDigest
	}
	if p.LogN < 1 || p.LogN > 30 {
		return false, ErrMalformedDigest
	}

	salt, err := b64.DecodeString(parts[3])
	if err != nil {
		return false, ErrMalformedDigest
	}
	want, err := b64.DecodeString(parts[4])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedDigest
	}

	got, err := scrypt.Key([]byte(plaintext), salt, 1<<p.LogN, p.R, p.P, len(want))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
