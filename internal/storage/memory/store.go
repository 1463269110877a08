package memory

import (
	"context"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/pkg/cmap"
)

// Store is an in-memory token record backend.
type Store struct {
	records *cmap.Map[*domain.TokenRecord]
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
}

// WithShardCount sets the number of map shards (power of two).
func WithShardCount(n int) Option {
	return func(o *storeOptions) { o.shards = n }
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	o := storeOptions{shards: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{records: cmap.NewWithShards[*domain.TokenRecord](o.shards)}
}

// Get returns a copy of the record for userID.
func (s *Store) Get(ctx context.Context, userID string) (*domain.TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := s.records.Get(userID)
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

// Put stores a copy of rec, replacing any record for the same user.
func (s *Store) Put(ctx context.Context, rec *domain.TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	s.records.Set(rec.UserID, rec.Clone())
	return nil
}

func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.records.Delete(userID)
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.records.Clear()
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.records.Count(), nil
}
