package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/pwdless-go/pkg/crypto/adaptive"
	"github.com/yndnr/pwdless-go/pkg/hash"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Store.DefaultTTL <= 0 {
		return errors.New("store.default_ttl must be positive")
	}
	if err := verifyBackend(&cfg.Backend); err != nil {
		return err
	}
	if err := verifyHash(&cfg.Hash); err != nil {
		return err
	}
	return verifyLog(cfg)
}

func verifyBackend(cfg *BackendSection) error {
	switch cfg.Type {
	case BackendMemory:
		return nil
	case BackendBadger:
		b := cfg.Badger
		if b.Dir == "" && !b.InMemory {
			return errors.New("backend.badger.dir is required")
		}
		if b.GCDiscardRatio < 0 || b.GCDiscardRatio >= 1 {
			return errors.New("backend.badger.gc_discard_ratio must be in [0, 1)")
		}
		if b.EncryptionKey != "" {
			if _, err := adaptive.ParseKey(b.EncryptionKey); err != nil {
				return fmt.Errorf("backend.badger.encryption_key: %w", err)
			}
		}
		return nil
	case BackendSQL:
		if err := cfg.SQL.Validate(); err != nil {
			return fmt.Errorf("backend.sql: %w", err)
		}
		return nil
	case BackendRedis:
		if err := cfg.Redis.Validate(); err != nil {
			return fmt.Errorf("backend.redis: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("backend.type %q is not one of memory, badger, sql, redis", cfg.Type)
	}
}

func verifyHash(cfg *hash.Config) error {
	switch strings.ToLower(cfg.Algorithm) {
	case hash.AlgorithmBcrypt:
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return fmt.Errorf("hash.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
	case hash.AlgorithmArgon2id:
		p := cfg.Argon2
		if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 || p.KeyLen < 16 {
			return errors.New("hash.argon2: time, memory_kib and threads must be positive and key_len at least 16")
		}
	case hash.AlgorithmScrypt:
		p := cfg.Scrypt
		if p.LogN < 1 || p.LogN > 30 || p.R <= 0 || p.P <= 0 || p.KeyLen < 16 {
			return errors.New("hash.scrypt: log_n must be in [1, 30], r and p positive and key_len at least 16")
		}
	default:
		return fmt.Errorf("hash.algorithm %q is not one of bcrypt, argon2id, scrypt", cfg.Algorithm)
	}
	return nil
}

func verifyLog(cfg *Config) error {
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "console", "text":
	default:
		return fmt.Errorf("log.format %q is not one of json, console", cfg.Log.Format)
	}
	return nil
}
