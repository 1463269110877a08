// Package confloader loads configuration with koanf.
//
// Sources are layered with the following priority (highest first):
//
//  1. Overrides (command-line flags)
//  2. Environment variables (PWDLESS_ prefix)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct (defaults)
//
// Environment variable names are resolved against the koanf keys of the
// target struct, so PWDLESS_STORE_DEFAULT_TTL maps to store.default_ttl
// rather than store.default.ttl.
package confloader
