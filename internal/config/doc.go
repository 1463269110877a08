// Package config defines the pwdless configuration structure, its
// defaults, validation and the sanitized view used for display.
//
// Loading from files, environment and flags is done by
// internal/infra/confloader.
package config
