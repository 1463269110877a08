package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/pwdless-go/internal/config"
	"github.com/yndnr/pwdless-go/internal/core/service"
	"github.com/yndnr/pwdless-go/internal/infra/confloader"
	"github.com/yndnr/pwdless-go/internal/storage"
	"github.com/yndnr/pwdless-go/internal/storage/memory"
	"github.com/yndnr/pwdless-go/internal/storage/redisstore"
	"github.com/yndnr/pwdless-go/internal/storage/sqlstore"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
	"github.com/yndnr/pwdless-go/pkg/hash"
)

// loadConfig builds the effective configuration: defaults, then the
// --config file, then PWDLESS_ variables, then global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithOverrides(flagOverrides(c)),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session is one command invocation against an open token store.
type session struct {
	cfg   *config.Config
	log   logger.Logger
	store *service.Store
}

// openSession loads the configuration and prepares a token store. The
// backend itself is connected lazily by the first store operation. The
// returned context carries the invocation's operation ID.
func openSession(c *cli.Context) (*session, context.Context, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Log
	logCfg.Output = errWriter(c)
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	hasher, err := hash.New(cfg.Hash)
	if err != nil {
		return nil, nil, err
	}

	connector, err := newConnector(c, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	store := service.NewStore(connector, hasher, service.WithLogger(log))
	if reg := registry(c); reg != nil {
		store.RegisterMetrics(reg)
	}

	ctx := logger.WithOperationID(c.Context, uuid.NewString())
	ctx = logger.WithLogger(ctx, log)
	logger.L(ctx).Debug("session opened", "command", c.Command.FullName(), "backend", cfg.Backend.Type)

	return &session{cfg: cfg, log: log, store: store}, ctx, nil
}

func (s *session) close() error {
	err := s.store.Close()
	_ = s.log.Sync()
	return err
}

// newConnector selects the backend named by cfg.Backend.Type.
func newConnector(c *cli.Context, cfg *config.Config, log logger.Logger) (service.Connector, error) {
	switch cfg.Backend.Type {
	case config.BackendMemory:
		return service.StaticConnector(memory.New()), nil
	case config.BackendBadger:
		conn := storage.NewBadgerConnector(cfg.Backend.Badger, log)
		if reg := registry(c); reg != nil {
			if err := reg.Register(conn); err != nil {
				return nil, fmt.Errorf("register badger metrics: %w", err)
			}
		}
		return conn, nil
	case config.BackendSQL:
		return sqlstore.NewConnector(cfg.Backend.SQL, log), nil
	case config.BackendRedis:
		return redisstore.NewConnector(cfg.Backend.Redis, log), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Type)
	}
}

// withSession opens a session, runs fn and closes the session. A close
// error is reported only when fn succeeded.
func withSession(c *cli.Context, fn func(ctx context.Context, s *session) error) (err error) {
	s, ctx, err := openSession(c)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return fn(ctx, s)
}
