// Package adaptive seals small values with an AEAD cipher chosen for the
// host: AES-256-GCM where the CPU accelerates AES, ChaCha20-Poly1305
// elsewhere.
//
// Sealed output is nonce || ciphertext || tag. Callers bind context (for
// example the record key) through the additional data argument so a sealed
// value cannot be replayed under another key.
//
//	c, err := adaptive.New(key)
//	sealed, err := c.Seal(plaintext, []byte(userID))
//	plaintext, err := c.Open(sealed, []byte(userID))
package adaptive
