package hash

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params tunes the argon2id provider.
type Argon2Params struct {
	Time      uint32 `koanf:"time"`
	MemoryKiB uint32 `koanf:"memory_kib"`
	Threads   uint8  `koanf:"threads"`
	KeyLen    uint32 `koanf:"key_len"`
}

// DefaultArgon2Params returns the RFC 9106 second recommended option.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:      3,
		MemoryKiB: 64 * 1024,
		Threads:   2,
		KeyLen:    32,
	}
}

// Argon2id hashes tokens with argon2id.
type Argon2id struct {
	params Argon2Params
}

// NewArgon2id creates an argon2id provider.
func NewArgon2id(p Argon2Params) (*Argon2id, error) {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 || p.KeyLen < 16 {
		return nil, fmt.Errorf("hash: invalid argon2id parameters %+v", p)
	}
	return &Argon2id{params: p}, nil
}

// Hash returns $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<key>.
func (h *Argon2id) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyInput
	}
	salt, err := newSalt()
	if err != nil {
		return "", err
	}
	p := h.params
	key := argon2.IDKey([]byte(plaintext), salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify recomputes the key with the digest's own parameters and salt.
func (h *Argon2id) Verify(plaintext, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return false, ErrMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedDigest
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return false, ErrMalformedDigest
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedDigest
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, ErrMalformedDigest
	}

	got := argon2.IDKey([]byte(plaintext), salt, p.Time, p.MemoryKiB, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
