package config

import (
	"time"

	"github.com/yndnr/pwdless-go/internal/storage"
	"github.com/yndnr/pwdless-go/internal/storage/redisstore"
	"github.com/yndnr/pwdless-go/internal/storage/sqlstore"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
	"github.com/yndnr/pwdless-go/pkg/hash"
)

// Config is the root configuration.
type Config struct {
	Store   StoreSection   `koanf:"store"`
	Backend BackendSection `koanf:"backend"`
	Hash    hash.Config    `koanf:"hash"`
	Log     logger.Config  `koanf:"log"`
}

// StoreSection configures token store behavior.
type StoreSection struct {
	// DefaultTTL is the lifetime applied when a command gives no --ttl.
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// BackendSection selects and configures the record backend. Only the
// section named by Type is used.
type BackendSection struct {
	Type   string               `koanf:"type"`
	Badger storage.BadgerConfig `koanf:"badger"`
	SQL    sqlstore.Config      `koanf:"sql"`
	Redis  redisstore.Config    `koanf:"redis"`
}

// Backend types.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQL    = "sql"
	BackendRedis  = "redis"
)
