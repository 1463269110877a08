package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Password digest prefixes. Values starting with one of these are masked
// whatever key they are logged under.
var digestPrefixes = []string{
	"$2a$",
	"$2b$",
	"$2y$",
	"$argon2id$",
	"$scrypt$",
}

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"digest",
	"hash",
	"credential",
	"key",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactValue returns the value to log for key.
func redactValue(key string, value any) any {
	switch v := value.(type) {
	case string:
		if v == "" {
			return v
		}
		if masked, ok := maskDigest(v); ok {
			return masked
		}
		if IsSensitiveKey(key) {
			return redactedValue
		}
	case []byte:
		if len(v) > 0 && IsSensitiveKey(key) {
			return redactedValue
		}
	}
	return value
}

func redactField(f zap.Field) zap.Field {
	if f.Type != zapcore.StringType {
		return f
	}
	if r, ok := redactValue(f.Key, f.String).(string); ok && r != f.String {
		return zap.String(f.Key, r)
	}
	return f
}

// maskDigest keeps only the algorithm prefix of a password digest.
func maskDigest(value string) (string, bool) {
	for _, prefix := range digestPrefixes {
		if strings.HasPrefix(value, prefix) {
			return prefix + "***", true
		}
	}
	return value, false
}

// RedactString masks a value before it is logged under a neutral key.
func RedactString(value string) string {
	masked, _ := maskDigest(value)
	return masked
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsDigest reports whether value looks like a password digest.
func IsDigest(value string) bool {
	_, ok := maskDigest(value)
	return ok
}
