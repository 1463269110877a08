package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the only accepted key length.
const KeySize = 32

// Kind identifies the AEAD algorithm behind a Cipher.
type Kind string

const (
	KindAESGCM   Kind = "aes-256-gcm"
	KindChaCha20 Kind = "chacha20-poly1305"
)

var (
	ErrKeySize     = errors.New("adaptive: key must be 32 bytes")
	ErrUnknownKind = errors.New("adaptive: unknown cipher kind")
	ErrShortInput  = errors.New("adaptive: sealed input too short")
)

// Cipher is safe for concurrent use.
type Cipher struct {
	kind Kind
	aead cipher.AEAD
}

// New returns the preferred cipher for the running architecture.
func New(key []byte) (*Cipher, error) {
	return NewKind(key, preferredKind())
}

// NewKind returns a cipher of the requested kind.
func NewKind(key []byte, kind Kind) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch kind {
	case KindAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case KindChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return &Cipher{kind: kind, aead: aead}, nil
}

// ParseKey decodes a hex encoded 32-byte key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("adaptive: decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	return key, nil
}

func (c *Cipher) Kind() Kind { return c.kind }

// Overhead is the number of bytes Seal adds to a plaintext.
func (c *Cipher) Overhead() int {
	return c.aead.NonceSize() + c.aead.Overhead()
}

// Seal encrypts plaintext under a fresh random nonce.
func (c *Cipher) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open authenticates and decrypts a value produced by Seal.
func (c *Cipher) Open(sealed, additionalData []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(sealed) < n+c.aead.Overhead() {
		return nil, ErrShortInput
	}
	return c.aead.Open(nil, sealed[:n], sealed[n:], additionalData)
}

// preferredKind picks AES-GCM on architectures where crypto/aes is
// hardware accelerated.
func preferredKind() Kind {
	switch runtime.GOARCH {
	case "amd64", "arm64", "s390x", "ppc64le":
		return KindAESGCM
	default:
		return KindChaCha20
	}
}
