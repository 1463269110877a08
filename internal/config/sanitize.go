package config

import (
	"net/url"
	"strings"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for displaying configuration without exposing secrets.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	b := &sanitized.Backend
	b.Badger.EncryptionKey = maskSecret(b.Badger.EncryptionKey)
	b.Redis.EncryptionKey = maskSecret(b.Redis.EncryptionKey)
	b.Redis.Password = maskSecret(b.Redis.Password)
	b.SQL.DSN = redactDSN(b.SQL.DSN)

	return &sanitized
}

// maskSecret masks a secret value for safe display. Empty values stay
// empty so that "not configured" remains visible.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// redactDSN hides the password of URL-style DSNs and of key=value
// PostgreSQL connection strings. File paths pass through.
func redactDSN(dsn string) string {
	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil {
			return u.Redacted()
		}
		return "****"
	}
	if !strings.Contains(dsn, "password=") {
		return dsn
	}
	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}
