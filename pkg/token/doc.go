// Package token generates login tokens for the passwordless flow.
//
// A token is DefaultLength bytes from crypto/rand, base64 RawURL encoded
// so it can travel in a magic link without escaping. Only its digest is
// ever persisted; see pkg/hash.
package token
