package domain

import "time"

// TokenRecord associates a user with the digest of a passwordless token.
//
// There is at most one record per UserID. Every write replaces the whole
// record; fields are never patched in place.
type TokenRecord struct {
	// UserID is the opaque user identifier and the primary key.
	UserID string `json:"user_id"`

	// HashedToken is the digest produced by a hash provider.
	HashedToken string `json:"hashed_token"`

	// ExpiresAt is the absolute instant at which the record stops
	// authenticating.
	ExpiresAt time.Time `json:"expires_at"`

	// OriginURL is the URL originally requested by the user, or "".
	OriginURL string `json:"origin_url"`
}

// NewTokenRecord builds a record expiring ttl after now. ExpiresAt is
// rounded up to the millisecond, the precision backends persist, so a
// positive ttl never yields a record that is already expired.
func NewTokenRecord(userID, hashedToken string, now time.Time, ttl time.Duration, originURL string) *TokenRecord {
	return &TokenRecord{
		UserID:      userID,
		HashedToken: hashedToken,
		ExpiresAt:   ceilMillis(now.Add(ttl)),
		OriginURL:   originURL,
	}
}

func ceilMillis(t time.Time) time.Time {
	floor := t.Truncate(time.Millisecond)
	if floor.Before(t) {
		return floor.Add(time.Millisecond)
	}
	return floor
}

// IsExpired reports whether the record is no longer valid at now.
// A record is valid only while now < ExpiresAt.
func (r *TokenRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Validate checks the record before it is handed to a backend.
func (r *TokenRecord) Validate() error {
	if r == nil {
		return ErrRecordInvalid.WithDetails("record is nil")
	}
	if r.UserID == "" {
		return ErrRecordInvalid.WithDetails("user_id is required")
	}
	if r.HashedToken == "" {
		return ErrRecordInvalid.WithDetails("hashed_token is required")
	}
	if r.ExpiresAt.IsZero() {
		return ErrRecordInvalid.WithDetails("expires_at is required")
	}
	return nil
}

// Clone returns a copy of the record.
func (r *TokenRecord) Clone() *TokenRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
