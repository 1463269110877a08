// Package redisstore implements the token record backend on Redis.
//
// Each record is a single string key holding a storage codec frame. A set
// of user IDs sits beside the records so that Count and DeleteAll need no
// keyspace scan. Keys carry no Redis TTL; expiry is decided by the token
// store when a record is read.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/internal/core/service"
	"github.com/yndnr/pwdless-go/internal/infra/tlsroots"
	"github.com/yndnr/pwdless-go/internal/storage"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
	"github.com/yndnr/pwdless-go/pkg/crypto/adaptive"
)

// DefaultPrefix namespaces every key written by the backend.
const DefaultPrefix = "pwdless:"

// Config configures the Redis backend.
type Config struct {
	Addr        string        `koanf:"addr"`
	Username    string        `koanf:"username"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"`
	Prefix      string        `koanf:"prefix"`
	DialTimeout time.Duration `koanf:"dial_timeout"`

	TLS tlsroots.Config `koanf:"tls"`

	// EncryptionKey is an optional hex-encoded 32-byte key sealing record
	// values.
	EncryptionKey string `koanf:"encryption_key"`
}

func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		Prefix:      DefaultPrefix,
		DialTimeout: 5 * time.Second,
	}
}

// Validate checks the parts of cfg that Open depends on.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("redisstore: addr is required")
	}
	if c.DB < 0 {
		return fmt.Errorf("redisstore: invalid db %d", c.DB)
	}
	if c.EncryptionKey != "" {
		if _, err := adaptive.ParseKey(c.EncryptionKey); err != nil {
			return fmt.Errorf("redisstore: encryption key: %w", err)
		}
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("redisstore: tls: %w", err)
	}
	return nil
}

// deleteAllScript removes every indexed record and the index in one step,
// so a concurrent Put is either wiped entirely or survives entirely.
var deleteAllScript = redis.NewScript(`
	local ids = redis.call('SMEMBERS', KEYS[1])
	for _, id in ipairs(ids) do
		redis.call('DEL', ARGV[1] .. id)
	end
	redis.call('DEL', KEYS[1])
	return #ids
`)

// Store is a token record backend on a Redis client.
type Store struct {
	client *redis.Client
	prefix string
	cipher *adaptive.Cipher
	log    logger.Logger
}

var _ service.Backend = (*Store)(nil)

// Open dials Redis and verifies the connection with PING.
func Open(ctx context.Context, cfg Config, log logger.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	var cipher *adaptive.Cipher
	if cfg.EncryptionKey != "" {
		key, _ := adaptive.ParseKey(cfg.EncryptionKey)
		c, err := adaptive.New(key)
		if err != nil {
			return nil, fmt.Errorf("redisstore: init cipher: %w", err)
		}
		cipher = c
	}

	tlsCfg, err := cfg.TLS.ClientTLS()
	if err != nil {
		return nil, fmt.Errorf("redisstore: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		TLSConfig:   tlsCfg,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore: ping %s: %w", cfg.Addr, err)
	}

	s := New(client, cfg.Prefix, cipher, log)
	s.log.Info("redis backend connected", "addr", cfg.Addr, "db", cfg.DB)
	return s, nil
}

// New wraps an existing client. An empty prefix selects DefaultPrefix.
func New(client *redis.Client, prefix string, cipher *adaptive.Cipher, log logger.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		client: client,
		prefix: prefix,
		cipher: cipher,
		log:    log.With("component", "redisstore"),
	}
}

func (s *Store) recordKeyPrefix() string {
	return s.prefix + "rec:"
}

func (s *Store) recordKey(userID string) string {
	return s.recordKeyPrefix() + userID
}

func (s *Store) indexKey() string {
	return s.prefix + "users"
}

func (s *Store) Get(ctx context.Context, userID string) (*domain.TokenRecord, error) {
	data, err := s.client.Get(ctx, s.recordKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: get record: %w", err)
	}
	return storage.DecodeRecord(data, userID, s.cipher)
}

func (s *Store) Put(ctx context.Context, rec *domain.TokenRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	frame, err := storage.EncodeRecord(rec, s.cipher)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(rec.UserID), frame, 0)
		pipe.SAdd(ctx, s.indexKey(), rec.UserID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstore: put record: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.recordKey(userID))
		pipe.SRem(ctx, s.indexKey(), userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstore: delete record: %w", err)
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	n, err := deleteAllScript.Run(ctx, s.client,
		[]string{s.indexKey()}, s.recordKeyPrefix()).Int()
	if err != nil {
		return fmt.Errorf("redisstore: delete all records: %w", err)
	}
	s.log.Debug("records deleted", "count", n)
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: count records: %w", err)
	}
	return int(n), nil
}

// Close closes the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

// Connector dials a new client on each Connect.
type Connector struct {
	cfg Config
	log logger.Logger
}

func NewConnector(cfg Config, log logger.Logger) *Connector {
	return &Connector{cfg: cfg, log: log}
}

func (c *Connector) Connect(ctx context.Context) (service.Backend, error) {
	return Open(ctx, c.cfg, c.log)
}
