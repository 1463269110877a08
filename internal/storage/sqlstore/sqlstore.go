// Package sqlstore implements the token record backend on database/sql,
// with SQLite (mattn/go-sqlite3) and PostgreSQL (pgx stdlib) drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/internal/core/service"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
)

// DefaultTable is the table holding token records.
const DefaultTable = "pwdless"

// Config configures the SQL backend.
type Config struct {
	Driver          Dialect       `koanf:"driver"`
	DSN             string        `koanf:"dsn"`
	Table           string        `koanf:"table"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// DefaultConfig returns a SQLite configuration under ./data.
func DefaultConfig() Config {
	return Config{
		Driver:          DialectSQLite,
		DSN:             "data/pwdless.db",
		Table:           DefaultTable,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Validate checks the parts of cfg that Open depends on.
func (c Config) Validate() error {
	if _, err := c.Driver.driverName(); err != nil {
		return err
	}
	if c.DSN == "" {
		return errors.New("sqlstore: dsn is required")
	}
	if !validIdentifier(c.table()) {
		return fmt.Errorf("sqlstore: invalid table name %q", c.Table)
	}
	return nil
}

func (c Config) table() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

func validIdentifier(s string) bool {
	if s == "" || len(s) > 63 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Store is a token record backend on a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
	log     logger.Logger

	qGet, qPut, qDelete, qDeleteAll, qCount string
}

var _ service.Backend = (*Store)(nil)

// Open connects to the database described by cfg, verifies the connection
// and creates the record table if it does not exist.
func Open(ctx context.Context, cfg Config, log logger.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	driver, _ := cfg.Driver.driverName()

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s database: %w", cfg.Driver, err)
	}
	cfg.Driver.configurePool(db, cfg)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: connect to %s database: %w", cfg.Driver, err)
	}

	s := newStore(db, cfg.Driver, cfg.table(), log)
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: initialize schema: %w", err)
	}

	s.log.Info("sql backend connected", "driver", string(cfg.Driver), "table", s.table)
	return s, nil
}

func newStore(db *sql.DB, d Dialect, table string, log logger.Logger) *Store {
	p := d.placeholder
	return &Store{
		db:      db,
		dialect: d,
		table:   table,
		log:     log.With("component", "sqlstore"),
		qGet: fmt.Sprintf(
			`SELECT hashed_token, expires_at, origin_url FROM %s WHERE user_id = %s`, table, p(1)),
		qPut: fmt.Sprintf(`
	INSERT INTO %s (user_id, hashed_token, expires_at, origin_url)
	VALUES (%s, %s, %s, %s)
	ON CONFLICT (user_id) DO UPDATE SET
		hashed_token = excluded.hashed_token,
		expires_at = excluded.expires_at,
		origin_url = excluded.origin_url`, table, p(1), p(2), p(3), p(4)),
		qDelete:    fmt.Sprintf(`DELETE FROM %s WHERE user_id = %s`, table, p(1)),
		qDeleteAll: fmt.Sprintf(`DELETE FROM %s`, table),
		qCount:     fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table),
	}
}

func (s *Store) initSchema(ctx context.Context) error {
	bytesType := s.dialect.bytesType()
	createTableQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		user_id %s PRIMARY KEY,
		hashed_token TEXT NOT NULL,
		expires_at BIGINT NOT NULL,
		origin_url %s NOT NULL
	)`, s.table, bytesType, bytesType)
	if _, err := s.db.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID string) (*domain.TokenRecord, error) {
	var (
		digest    string
		origin    []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, s.qGet, []byte(userID)).Scan(&digest, &expiresAt, &origin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: get record: %w", err)
	}
	return &domain.TokenRecord{
		UserID:      userID,
		HashedToken: digest,
		ExpiresAt:   time.UnixMilli(expiresAt).UTC(),
		OriginURL:   string(origin),
	}, nil
}

func (s *Store) Put(ctx context.Context, rec *domain.TokenRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.qPut,
		[]byte(rec.UserID), rec.HashedToken, rec.ExpiresAt.UnixMilli(), []byte(rec.OriginURL))
	if err != nil {
		return fmt.Errorf("sqlstore: put record: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, s.qDelete, []byte(userID)); err != nil {
		return fmt.Errorf("sqlstore: delete record: %w", err)
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, s.qDeleteAll)
	if err != nil {
		return fmt.Errorf("sqlstore: delete all records: %w", err)
	}
	rows, _ := res.RowsAffected()
	s.log.Debug("records deleted", "count", rows)
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.qCount).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlstore: count records: %w", err)
	}
	return n, nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Connector opens a Store on each Connect. The session is closed when the
// token store releases it.
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
