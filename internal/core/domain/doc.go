// Package domain defines the core domain models for pwdless.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - TokenRecord: the persisted association of a user with a hashed
//     passwordless token, its expiry and the originally requested URL
//   - Errors: domain error catalog shared by the store and its backends
//
// A TokenRecord never carries the plaintext token. Only the digest
// produced by a hash provider is ever stored.
package domain
