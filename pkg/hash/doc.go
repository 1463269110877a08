// Package hash provides one-way digests for passwordless tokens.
//
// Every provider embeds its own random salt in the digest it returns, so
// hashing the same token twice yields different digests and verification
// needs only the token and the stored digest.
//
// Providers:
//
//   - Bcrypt (default): golang.org/x/crypto/bcrypt, cost 10
//   - Argon2id: golang.org/x/crypto/argon2, PHC string encoding
//   - Scrypt: golang.org/x/crypto/scrypt, PHC-like string encoding
//
// Verify reports (false, nil) for a token that does not match and
// (false, err) when the digest cannot be parsed. Digest comparison is
// constant time in all providers.
package hash
