package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultLength is the number of random bytes in a generated token.
const DefaultLength = 32

// MinLength is the shortest token GenerateWithLength will produce.
const MinLength = 16

// Generate returns a 43 character URL-safe token.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength returns a token built from length random bytes.
func GenerateWithLength(length int) (string, error) {
	if length < MinLength {
		return "", fmt.Errorf("token: length %d below minimum %d", length, MinLength)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// EncodedLen reports the length of a token built from n random bytes.
func EncodedLen(n int) int {
	return base64.RawURLEncoding.EncodedLen(n)
}
