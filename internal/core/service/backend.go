package service

import (
	"context"

	"github.com/yndnr/pwdless-go/internal/core/domain"
)

// Backend persists token records keyed by user ID.
//
// Implementations must apply Put and Delete atomically per key so that a
// concurrent Get never observes a partially written record.
type Backend interface {
	// Get returns the record for userID, or domain.ErrRecordNotFound.
	Get(ctx context.Context, userID string) (*domain.TokenRecord, error)

	// Put inserts rec or replaces the existing record for rec.UserID.
	Put(ctx context.Context, rec *domain.TokenRecord) error

	// Delete removes the record for userID. A missing record is not an error.
	Delete(ctx context.Context, userID string) error

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored records, expired ones included.
	Count(ctx context.Context) (int, error)
}

// Connector establishes a backend session. The store calls Connect lazily
// and caches the result; if the session implements io.Closer it is closed
// when the store releases it.
type Connector interface {
	Connect(ctx context.Context) (Backend, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context) (Backend, error)

func (f ConnectorFunc) Connect(ctx context.Context) (Backend, error) {
	return f(ctx)
}

// StaticConnector returns a Connector that always yields b. Use it for
// backends that need no connection.
func StaticConnector(b Backend) Connector {
	return ConnectorFunc(func(context.Context) (Backend, error) {
		return b, nil
	})
}

// HashProvider computes and verifies token digests.
//
// Hash must salt its output. Verify returns (false, nil) on a mismatch and
// a non-nil error only when the comparison could not be carried out.
type HashProvider interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}
