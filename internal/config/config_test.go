package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.DefaultTTL != DefaultTTL {
		t.Errorf("DefaultTTL = %v, want %v", cfg.Store.DefaultTTL, DefaultTTL)
	}
	if cfg.Backend.Type != DefaultBackendType {
		t.Errorf("Backend.Type = %q, want %q", cfg.Backend.Type, DefaultBackendType)
	}
	if cfg.Hash.Algorithm != "bcrypt" || cfg.Hash.BcryptCost != 10 {
		t.Errorf("Hash = %+v, want bcrypt cost 10", cfg.Hash)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	key := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"memory", func(c *Config) { c.Backend.Type = BackendMemory }, ""},
		{"sql", func(c *Config) { c.Backend.Type = BackendSQL }, ""},
		{"redis", func(c *Config) { c.Backend.Type = BackendRedis }, ""},
		{"badger in memory", func(c *Config) {
			c.Backend.Badger.Dir = ""
			c.Backend.Badger.InMemory = true
		}, ""},
		{"badger key", func(c *Config) { c.Backend.Badger.EncryptionKey = key }, ""},
		{"argon2id", func(c *Config) { c.Hash.Algorithm = "argon2id" }, ""},
		{"scrypt", func(c *Config) { c.Hash.Algorithm = "scrypt" }, ""},

		{"zero ttl", func(c *Config) { c.Store.DefaultTTL = 0 }, "default_ttl"},
		{"negative ttl", func(c *Config) { c.Store.DefaultTTL = -time.Second }, "default_ttl"},
		{"unknown backend", func(c *Config) { c.Backend.Type = "etcd" }, "backend.type"},
		{"badger no dir", func(c *Config) { c.Backend.Badger.Dir = "" }, "badger.dir"},
		{"badger short key", func(c *Config) { c.Backend.Badger.EncryptionKey = "abcd" }, "encryption_key"},
		{"badger discard ratio", func(c *Config) { c.Backend.Badger.GCDiscardRatio = 1 }, "gc_discard_ratio"},
		{"sql driver", func(c *Config) {
			c.Backend.Type = BackendSQL
			c.Backend.SQL.Driver = "oracle"
		}, "backend.sql"},
		{"redis addr", func(c *Config) {
			c.Backend.Type = BackendRedis
			c.Backend.Redis.Addr = ""
		}, "backend.redis"},
		{"unknown algorithm", func(c *Config) { c.Hash.Algorithm = "md5" }, "hash.algorithm"},
		{"bcrypt cost low", func(c *Config) { c.Hash.BcryptCost = 3 }, "bcrypt_cost"},
		{"bcrypt cost high", func(c *Config) { c.Hash.BcryptCost = 32 }, "bcrypt_cost"},
		{"argon2 zero time", func(c *Config) {
			c.Hash.Algorithm = "argon2id"
			c.Hash.Argon2.Time = 0
		}, "hash.argon2"},
		{"scrypt zero r", func(c *Config) {
			c.Hash.Algorithm = "scrypt"
			c.Hash.Scrypt.R = 0
		}, "hash.scrypt"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Nil(t *testing.T) {
	if err := Verify(nil); err == nil {
		t.Error("Verify(nil) should fail")
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Backend.Badger.EncryptionKey = strings.Repeat("ab", 32)
	cfg.Backend.Redis.Password = "hunter22"
	cfg.Backend.SQL.DSN = "postgres://app:s3cret@db:5432/pwdless"

	sanitized := Sanitize(cfg)

	// Original should be unchanged
	if cfg.Backend.Redis.Password != "hunter22" {
		t.Error("Sanitize modified the original config")
	}

	if strings.Contains(sanitized.Backend.Badger.EncryptionKey, strings.Repeat("ab", 8)) {
		t.Errorf("EncryptionKey not masked: %q", sanitized.Backend.Badger.EncryptionKey)
	}
	if sanitized.Backend.Redis.Password != "hu****22" {
		t.Errorf("Password = %q, want %q", sanitized.Backend.Redis.Password, "hu****22")
	}
	if strings.Contains(sanitized.Backend.SQL.DSN, "s3cret") {
		t.Errorf("DSN not redacted: %q", sanitized.Backend.SQL.DSN)
	}
	if sanitized.Backend.Redis.EncryptionKey != "" {
		t.Errorf("unset key should stay empty, got %q", sanitized.Backend.Redis.EncryptionKey)
	}
}

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data/pwdless.db", "data/pwdless.db"},
		{":memory:", ":memory:"},
		{"postgres://app:pw@db/x", "postgres://app:xxxxx@db/x"},
		{"postgres://db/x", "postgres://db/x"},
		{"host=db user=app password=pw dbname=x", "host=db user=app password=xxxxx dbname=x"},
	}
	for _, tt := range tests {
		if got := redactDSN(tt.in); got != tt.want {
			t.Errorf("redactDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "****"},
		{"abcdefgh", "ab****gh"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
