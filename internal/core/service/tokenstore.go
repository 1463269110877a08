package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
	"github.com/yndnr/pwdless-go/internal/telemetry/metric"
)

// Store is the passwordless token store. It is safe for concurrent use.
//
// The only lock a Store holds guards its cached backend session. Records
// for the same user are not serialized by the store: concurrent writes
// resolve as last-writer-wins through the backend's per-key atomicity.
type Store struct {
	connector Connector
	hasher    HashProvider
	now       func() time.Time
	log       logger.Logger
	metrics   *metric.StoreMetrics

	mu      sync.RWMutex
	backend Backend
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the store's clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records operation outcomes into m.
func WithMetrics(m *metric.StoreMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a store. No backend session is opened until the first
// operation that needs one.
func NewStore(connector Connector, hasher HashProvider, opts ...Option) *Store {
	s := &Store{
		connector: connector,
		hasher:    hasher,
		now:       time.Now,
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "tokenstore")
	return s
}

// RegisterMetrics creates the store's collectors and registers them with
// reg. Returns the store for method chaining.
func (s *Store) RegisterMetrics(reg prometheus.Registerer) *Store {
	s.metrics = metric.NewStoreMetrics().MustRegister(reg)
	return s
}

// StoreOrUpdate hashes token and writes a record for userID that expires
// ttl from now, replacing any previous record for that user. An empty
// originURL is stored as "".
func (s *Store) StoreOrUpdate(ctx context.Context, token, userID string, ttl time.Duration, originURL string) error {
	const op = metric.OpStoreOrUpdate

	if err := checkCredentials(token, userID); err != nil {
		s.metrics.ObserveOperation(op, metric.ResultRejected)
		return err
	}
	if ttl <= 0 {
		s.metrics.ObserveOperation(op, metric.ResultRejected)
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("ttl must be positive, got %s", ttl))
	}

	start := time.Now()
	digest, err := s.hasher.Hash(token)
	s.metrics.ObserveHash(op, time.Since(start))
	if err != nil {
		s.metrics.ObserveOperation(op, metric.ResultError)
		return domain.ErrHash.WithCause(err)
	}

	rec := domain.NewTokenRecord(userID, digest, s.now(), ttl, originURL)
	if err := s.withBackend(ctx, func(b Backend) error {
		return b.Put(ctx, rec)
	}); err != nil {
		s.metrics.ObserveOperation(op, metric.ResultError)
		s.log.WithContext(ctx).Error("store token failed", "user_id", userID, "error", err)
		return backendError(err)
	}

	s.metrics.ObserveOperation(op, metric.ResultOK)
	s.log.WithContext(ctx).Debug("token stored", "user_id", userID, "expires_at", rec.ExpiresAt)
	return nil
}

// Authenticate reports whether token is the live token for userID and, if
// so, the origin URL stored with it. A missing record, an expired record
// and a wrong token all yield (false, "", nil). The record is not modified;
// callers wanting single use should InvalidateUser after a success.
func (s *Store) Authenticate(ctx context.Context, token, userID string) (bool, string, error) {
	const op = metric.OpAuthenticate

	if err := checkCredentials(token, userID); err != nil {
		s.metrics.ObserveOperation(op, metric.ResultRejected)
		return false, "", err
	}

	var rec *domain.TokenRecord
	err := s.withBackend(ctx, func(b Backend) error {
		var err error
		rec, err = b.Get(ctx, userID)
		return err
	})
	if errors.Is(err, domain.ErrRecordNotFound) || (err == nil && rec == nil) {
		return s.invalid(ctx, userID, "no record")
	}
	if err != nil {
		s.metrics.ObserveOperation(op, metric.ResultError)
		s.log.WithContext(ctx).Error("read token failed", "user_id", userID, "error", err)
		return false, "", backendError(err)
	}
	if rec.IsExpired(s.now()) {
		return s.invalid(ctx, userID, "expired")
	}

	start := time.Now()
	ok, err := s.hasher.Verify(token, rec.HashedToken)
	s.metrics.ObserveHash(op, time.Since(start))
	if err != nil {
		s.metrics.ObserveOperation(op, metric.ResultError)
		s.log.WithContext(ctx).Error("verify token failed", "user_id", userID, "error", err)
		return false, "", domain.ErrHash.WithCause(err)
	}
	if !ok {
		return s.invalid(ctx, userID, "mismatch")
	}

	s.metrics.ObserveOperation(op, metric.ResultValid)
	s.log.WithContext(ctx).Debug("token authenticated", "user_id", userID)
	return true, rec.OriginURL, nil
}

// invalid records a negative authentication. reason is logged but never
// returned.
func (s *Store) invalid(ctx context.Context, userID, reason string) (bool, string, error) {
	s.metrics.ObserveOperation(metric.OpAuthenticate, metric.ResultInvalid)
	s.log.WithContext(ctx).Debug("token rejected", "user_id", userID, "reason", reason)
	return false, "", nil
}

// InvalidateUser deletes the record for userID if there is one.
//
// It is best effort: backend failures are logged and counted, then
// swallowed, so the method only fails for an empty userID.
func (s *Store) InvalidateUser(ctx context.Context, userID string) error {
	const op = metric.OpInvalidateUser

	if userID == "" {
		s.metrics.ObserveOperation(op, metric.ResultRejected)
		return domain.ErrMissingArgument.WithDetails("user_id is required")
	}

	err := s.withBackend(ctx, func(b Backend) error {
		if _, err := b.Get(ctx, userID); err != nil {
			return err
		}
		return b.Delete(ctx, userID)
	})
	switch {
	case err == nil:
		s.metrics.ObserveOperation(op, metric.ResultOK)
		s.log.WithContext(ctx).Debug("user invalidated", "user_id", userID)
	case errors.Is(err, domain.ErrRecordNotFound):
		s.metrics.ObserveOperation(op, metric.ResultOK)
	default:
		s.metrics.ObserveOperation(op, metric.ResultSwallowed)
		s.log.WithContext(ctx).Warn("invalidate user failed, ignoring",
			"user_id", userID,
			"code", domain.ErrBackend.Code,
			"error", err)
	}
	return nil
}

// Clear deletes every record and then releases the backend session so the
// next operation reconnects. The session is released even if the delete
// fails.
func (s *Store) Clear(ctx context.Context) error {
	const op = metric.OpClear

	err := s.withBackend(ctx, func(b Backend) error {
		return b.DeleteAll(ctx)
	})
	if cerr := s.release(); cerr != nil {
		s.log.WithContext(ctx).Warn("release backend failed", "error", cerr)
	}
	if err != nil {
		s.metrics.ObserveOperation(op, metric.ResultError)
		s.log.WithContext(ctx).Error("clear failed", "error", err)
		return backendError(err)
	}

	s.metrics.ObserveOperation(op, metric.ResultOK)
	s.log.WithContext(ctx).Info("token store cleared")
	return nil
}

// Length returns the number of stored records, expired ones included.
func (s *Store) Length(ctx context.Context) (int, error) {
	const op = metric.OpLength

	var n int
	err := s.withBackend(ctx, func(b Backend) error {
		var err error
		n, err = b.Count(ctx)
		return err
	})
	if err != nil {
		s.metrics.ObserveOperation(op, metric.ResultError)
		return 0, backendError(err)
	}
	s.metrics.ObserveOperation(op, metric.ResultOK)
	return n, nil
}

// Close releases the backend session. The store stays usable; the next
// operation reconnects.
func (s *Store) Close() error {
	if err := s.release(); err != nil {
		return domain.ErrBackend.WithDetails("release session").WithCause(err)
	}
	return nil
}

// withBackend runs fn against the cached session, connecting first when
// there is none. The read lock is held while fn runs so the session cannot
// be released underneath it.
func (s *Store) withBackend(ctx context.Context, fn func(Backend) error) error {
	for {
		if done, err := s.useCached(fn); done {
			return err
		}
		if err := s.connect(ctx); err != nil {
			return err
		}
	}
}

func (s *Store) useCached(fn func(Backend) error) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.backend == nil {
		return false, nil
	}
	return true, fn(s.backend)
}

func (s *Store) connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return domain.ErrBackend.WithDetails("connect").WithCause(err)
	}

	b, err := s.connector.Connect(ctx)
	if err == nil && b == nil {
		err = errors.New("connector returned no backend")
	}
	s.metrics.ObserveConnect(err)
	if err != nil {
		s.log.WithContext(ctx).Error("backend connect failed", "error", err)
		return domain.ErrBackend.WithDetails("connect").WithCause(err)
	}
	s.backend = b
	s.log.WithContext(ctx).Debug("backend session acquired")
	return nil
}

// release drops the cached session, closing it if it is an io.Closer.
func (s *Store) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.backend
	s.backend = nil
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func checkCredentials(token, userID string) error {
	if token == "" {
		return domain.ErrMissingArgument.WithDetails("token is required")
	}
	if userID == "" {
		return domain.ErrMissingArgument.WithDetails("user_id is required")
	}
	return nil
}

// backendError maps a backend failure into the ErrBackend taxonomy,
// keeping the original error in the chain.
func backendError(err error) error {
	if errors.Is(err, domain.ErrBackend) {
		return err
	}
	return domain.ErrBackend.WithCause(err)
}
