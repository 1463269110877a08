package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/internal/core/service"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
	"github.com/yndnr/pwdless-go/pkg/crypto/adaptive"
)

// recordPrefix namespaces token records inside the Badger keyspace.
const recordPrefix = "pwdless/rec/"

// BadgerConfig configures the embedded Badger backend.
type BadgerConfig struct {
	Dir string `koanf:"dir"`
	// InMemory keeps all data in RAM; Dir must be empty.
	InMemory         bool          `koanf:"in_memory"`
	SyncWrites       bool          `koanf:"sync_writes"`
	ValueLogFileSize int64         `koanf:"value_log_file_size"`
	GCInterval       time.Duration `koanf:"gc_interval"`
	GCDiscardRatio   float64       `koanf:"gc_discard_ratio"`
	// EncryptionKey is a hex encoded 32-byte key. When set, record values
	// are sealed with pkg/crypto/adaptive.
	EncryptionKey string `koanf:"encryption_key"`
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		Dir:              "data/badger",
		ValueLogFileSize: 64 << 20,
		GCInterval:       10 * time.Minute,
		GCDiscardRatio:   0.5,
	}
}

// BadgerBackend stores token records in Badger.
type BadgerBackend struct {
	db     *badger.DB
	cfg    BadgerConfig
	cipher *adaptive.Cipher
	log    logger.Logger

	lastGC atomic.Int64 // unix milliseconds
	gcRuns atomic.Uint64

	mu     sync.RWMutex
	closed bool
	stopCh chan struct{}
	doneCh chan struct{}
}

// OpenBadger opens (or creates) the Badger database described by cfg and
// starts its value-log GC loop.
func OpenBadger(cfg BadgerConfig, log logger.Logger) (*BadgerBackend, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.With("backend", "badger")

	var cipher *adaptive.Cipher
	if cfg.EncryptionKey != "" {
		key, err := adaptive.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("badger: encryption_key: %w", err)
		}
		if cipher, err = adaptive.New(key); err != nil {
			return nil, fmt.Errorf("badger: init cipher: %w", err)
		}
	}

	opts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(&badgerLogger{log: log})
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}
	if cfg.ValueLogFileSize > 0 {
		opts = opts.WithValueLogFileSize(cfg.ValueLogFileSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	b := &BadgerBackend{
		db:     db,
		cfg:    cfg,
		cipher: cipher,
		log:    log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go b.gcLoop()

	log.Info("badger backend opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"encrypted", cipher != nil,
		"gc_interval", cfg.GCInterval)
	return b, nil
}

func recordKey(userID string) []byte {
	return []byte(recordPrefix + userID)
}

// view runs fn while the backend is guaranteed open.
func (b *BadgerBackend) view(fn func() error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return domain.ErrBackendClosed
	}
	return fn()
}

func (b *BadgerBackend) Get(ctx context.Context, userID string) (*domain.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec *domain.TokenRecord
	err := b.view(func() error {
		return b.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(recordKey(userID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrRecordNotFound
			}
			if err != nil {
				return fmt.Errorf("badger: get: %w", err)
			}
			return item.Value(func(val []byte) error {
				rec, err = DecodeRecord(val, userID, b.cipher)
				return err
			})
		})
	})
	return rec, err
}

func (b *BadgerBackend) Put(ctx context.Context, rec *domain.TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	frame, err := EncodeRecord(rec, b.cipher)
	if err != nil {
		return err
	}
	return b.view(func() error {
		if err := b.db.Update(func(txn *badger.Txn) error {
			return txn.Set(recordKey(rec.UserID), frame)
		}); err != nil {
			return fmt.Errorf("badger: put: %w", err)
		}
		return nil
	})
}

func (b *BadgerBackend) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.view(func() error {
		if err := b.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(recordKey(userID))
		}); err != nil {
			return fmt.Errorf("badger: delete: %w", err)
		}
		return nil
	})
}

// DeleteAll drops every key under the record prefix.
func (b *BadgerBackend) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.view(func() error {
		if err := b.db.DropPrefix([]byte(recordPrefix)); err != nil {
			return fmt.Errorf("badger: drop prefix: %w", err)
		}
		return nil
	})
}

// Count walks the record keys without loading values.
func (b *BadgerBackend) Count(ctx context.Context) (int, error) {
	n := 0
	err := b.view(func() error {
		return b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = []byte(recordPrefix)
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if n%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				n++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// GC runs value-log garbage collection until Badger reports nothing left
// to rewrite. Returns the number of rewritten log files.
func (b *BadgerBackend) GC(ctx context.Context) (int, error) {
	rewrites := 0
	err := b.view(func() error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := b.db.RunValueLogGC(b.cfg.GCDiscardRatio)
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("badger: gc: %w", err)
			}
			rewrites++
		}
	})
	b.lastGC.Store(time.Now().UnixMilli())
	b.gcRuns.Add(1)
	return rewrites, err
}

// Size returns the LSM and value-log sizes in bytes.
func (b *BadgerBackend) Size() (lsm, vlog int64) {
	_ = b.view(func() error {
		lsm, vlog = b.db.Size()
		return nil
	})
	return lsm, vlog
}

// Close stops the GC loop and closes the database. It is idempotent.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stopCh)
	<-b.doneCh

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	b.log.Info("badger backend closed")
	return nil
}

func (b *BadgerBackend) gcLoop() {
	defer close(b.doneCh)

	interval := b.cfg.GCInterval
	if interval <= 0 || b.cfg.InMemory {
		<-b.stopCh
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if n, err := b.GC(ctx); err != nil {
				b.log.Error("value log gc failed", "error", err)
			} else if n > 0 {
				b.log.Info("value log gc completed", "rewrites", n)
			}
			cancel()
		case <-b.stopCh:
			return
		}
	}
}

// BadgerConnector opens a BadgerBackend on first use. Releasing the session
// closes the database, and the next Connect reopens it.
//
// The connector is also a prometheus.Collector reporting the sizes of the
// currently open database.
type BadgerConnector struct {
	cfg BadgerConfig
	log logger.Logger

	mu      sync.Mutex
	current *BadgerBackend

	lsmSize  *prometheus.Desc
	vlogSize *prometheus.Desc
	gcRuns   *prometheus.Desc
}

var _ prometheus.Collector = (*BadgerConnector)(nil)

func NewBadgerConnector(cfg BadgerConfig, log logger.Logger) *BadgerConnector {
	return &BadgerConnector{
		cfg: cfg,
		log: log,
		lsmSize: prometheus.NewDesc("pwdless_badger_lsm_size_bytes",
			"Badger LSM tree size in bytes", nil, nil),
		vlogSize: prometheus.NewDesc("pwdless_badger_value_log_size_bytes",
			"Badger value log size in bytes", nil, nil),
		gcRuns: prometheus.NewDesc("pwdless_badger_gc_runs_total",
			"Value log GC passes since the database was opened", nil, nil),
	}
}

func (c *BadgerConnector) Connect(ctx context.Context) (service.Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := OpenBadger(c.cfg, c.log)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.current = b
	c.mu.Unlock()
	return b, nil
}

func (c *BadgerConnector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lsmSize
	ch <- c.vlogSize
	ch <- c.gcRuns
}

func (c *BadgerConnector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	b := c.current
	c.mu.Unlock()
	if b == nil {
		return
	}
	lsm, vlog := b.Size()
	ch <- prometheus.MustNewConstMetric(c.lsmSize, prometheus.GaugeValue, float64(lsm))
	ch <- prometheus.MustNewConstMetric(c.vlogSize, prometheus.GaugeValue, float64(vlog))
	ch <- prometheus.MustNewConstMetric(c.gcRuns, prometheus.CounterValue, float64(b.gcRuns.Load()))
}

// badgerLogger adapts Logger to Badger's Logger interface. Badger's info
// chatter is demoted to debug.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
