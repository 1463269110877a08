package config

import (
	"time"

	"github.com/yndnr/pwdless-go/internal/storage"
	"github.com/yndnr/pwdless-go/internal/storage/redisstore"
	"github.com/yndnr/pwdless-go/internal/storage/sqlstore"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
	"github.com/yndnr/pwdless-go/pkg/hash"
)

// Default values.
const (
	DefaultTTL         = 15 * time.Minute
	DefaultBackendType = BackendBadger
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

// Default returns a configuration with all defaults applied.
func Default() *Config {
	log := logger.DefaultConfig()
	log.Level = DefaultLogLevel
	log.Format = DefaultLogFormat

	return &Config{
		Store: StoreSection{
			DefaultTTL: DefaultTTL,
		},
		Backend: BackendSection{
			Type:   DefaultBackendType,
			Badger: storage.DefaultBadgerConfig(),
			SQL:    sqlstore.DefaultConfig(),
			Redis:  redisstore.DefaultConfig(),
		},
		Hash: hash.DefaultConfig(),
		Log:  log,
	}
}
