// Package storagetest provides a conformance suite that every token record
// backend must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/pwdless-go/internal/core/domain"
	"github.com/yndnr/pwdless-go/internal/core/service"
)

// Factory returns an empty backend. It should register any cleanup with t.
type Factory func(t *testing.T) service.Backend

// Run executes the conformance suite against backends built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, b service.Backend)
	}{
		{"GetMissing", testGetMissing},
		{"PutGet", testPutGet},
		{"PutReplaces", testPutReplaces},
		{"EmptyOrigin", testEmptyOrigin},
		{"Delete", testDelete},
		{"DeleteMissing", testDeleteMissing},
		{"DeleteAll", testDeleteAll},
		{"CountIncludesExpired", testCountIncludesExpired},
		{"ReturnedRecordIsCopy", testReturnedRecordIsCopy},
		{"UnusualUserIDs", testUnusualUserIDs},
		{"NonUTF8Bytes", testNonUTF8Bytes},
		{"LongUserID", testLongUserID},
		{"ConcurrentPutSameUser", testConcurrentPutSameUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newBackend(t))
		})
	}
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(userID, digest string, ttl time.Duration, origin string) *domain.TokenRecord {
	return domain.NewTokenRecord(userID, digest, baseTime, ttl, origin)
}

func mustPut(t *testing.T, b service.Backend, rec *domain.TokenRecord) {
	t.Helper()
	if err := b.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put(%s) error = %v", rec.UserID, err)
	}
}

func mustCount(t *testing.T, b service.Backend) int {
	t.Helper()
	n, err := b.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	return n
}

func assertRecord(t *testing.T, got, want *domain.TokenRecord) {
	t.Helper()
	if got == nil {
		t.Fatal("record is nil")
	}
	if got.UserID != want.UserID {
		t.Errorf("UserID = %q, want %q", got.UserID, want.UserID)
	}
	if got.HashedToken != want.HashedToken {
		t.Errorf("HashedToken = %q, want %q", got.HashedToken, want.HashedToken)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
	}
	if got.OriginURL != want.OriginURL {
		t.Errorf("OriginURL = %q, want %q", got.OriginURL, want.OriginURL)
	}
}

func testGetMissing(t *testing.T, b service.Backend) {
	_, err := b.Get(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func testPutGet(t *testing.T, b service.Backend) {
	want := record("u1", "$2a$04$digest-one", time.Minute, "/dashboard")
	mustPut(t, b, want)

	got, err := b.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	assertRecord(t, got, want)
}

func testPutReplaces(t *testing.T, b service.Backend) {
	mustPut(t, b, record("u1", "first", time.Minute, "/a"))
	second := record("u1", "second", 2*time.Minute, "")
	mustPut(t, b, second)

	got, err := b.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	assertRecord(t, got, second)
	if n := mustCount(t, b); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func testEmptyOrigin(t *testing.T, b service.Backend) {
	mustPut(t, b, record("u1", "digest", time.Minute, ""))

	got, err := b.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.OriginURL != "" {
		t.Errorf("OriginURL = %q, want empty", got.OriginURL)
	}
}

func testDelete(t *testing.T, b service.Backend) {
	ctx := context.Background()
	mustPut(t, b, record("u1", "d1", time.Minute, ""))
	mustPut(t, b, record("u2", "d2", time.Minute, ""))

	if err := b.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Get(ctx, "u1"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrRecordNotFound", err)
	}
	if _, err := b.Get(ctx, "u2"); err != nil {
		t.Errorf("Get(u2) error = %v, other users must be untouched", err)
	}
	if n := mustCount(t, b); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func testDeleteMissing(t *testing.T, b service.Backend) {
	if err := b.Delete(context.Background(), "nobody"); err != nil {
		t.Fatalf("Delete(missing) error = %v, want nil", err)
	}
}

func testDeleteAll(t *testing.T, b service.Backend) {
	for i := 0; i < 25; i++ {
		mustPut(t, b, record(fmt.Sprintf("user-%02d", i), "d", time.Minute, ""))
	}
	if n := mustCount(t, b); n != 25 {
		t.Fatalf("Count() = %d, want 25", n)
	}

	if err := b.DeleteAll(context.Background()); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if n := mustCount(t, b); n != 0 {
		t.Errorf("Count() after DeleteAll = %d, want 0", n)
	}

	mustPut(t, b, record("after", "d", time.Minute, ""))
	if n := mustCount(t, b); n != 1 {
		t.Errorf("Count() after re-put = %d, want 1", n)
	}
}

func testCountIncludesExpired(t *testing.T, b service.Backend) {
	expired := &domain.TokenRecord{
		UserID:      "old",
		HashedToken: "d",
		ExpiresAt:   baseTime.Add(-time.Hour),
	}
	mustPut(t, b, expired)
	mustPut(t, b, record("new", "d", time.Hour, ""))

	if n := mustCount(t, b); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func testReturnedRecordIsCopy(t *testing.T, b service.Backend) {
	ctx := context.Background()
	mustPut(t, b, record("u1", "original", time.Minute, "/x"))

	got, err := b.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.HashedToken = "tampered"

	again, err := b.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.HashedToken != "original" {
		t.Errorf("HashedToken = %q, stored record was mutated through a returned copy", again.HashedToken)
	}
}

func testUnusualUserIDs(t *testing.T, b service.Backend) {
	ctx := context.Background()
	ids := []string{"alice@example.com", "用户-42", "with space", "colon:and/slash", "rec:nested"}
	for _, id := range ids {
		mustPut(t, b, record(id, "d-"+id, time.Minute, ""))
	}
	for _, id := range ids {
		got, err := b.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", id, err)
		}
		if got.UserID != id || got.HashedToken != "d-"+id {
			t.Errorf("Get(%q) = %+v", id, got)
		}
	}
	if n := mustCount(t, b); n != len(ids) {
		t.Errorf("Count() = %d, want %d", n, len(ids))
	}
}

func testNonUTF8Bytes(t *testing.T, b service.Backend) {
	ctx := context.Background()
	const userID = "user\xff\xfe"
	want := record(userID, "digest", time.Minute, "/d\xffx")
	mustPut(t, b, want)

	got, err := b.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", userID, err)
	}
	assertRecord(t, got, want)

	if _, err := b.Get(ctx, "user\ufffd\ufffd"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("Get(replacement chars) error = %v, want ErrRecordNotFound", err)
	}

	if err := b.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete(%q) error = %v", userID, err)
	}
	if n := mustCount(t, b); n != 0 {
		t.Errorf("Count() after Delete = %d, want 0", n)
	}
}

func testLongUserID(t *testing.T, b service.Backend) {
	ctx := context.Background()
	userID := strings.Repeat("u", 1024)
	want := record(userID, "digest", time.Minute, "/long")
	mustPut(t, b, want)

	got, err := b.Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get(long id) error = %v", err)
	}
	assertRecord(t, got, want)
}

func testConcurrentPutSameUser(t *testing.T, b service.Backend) {
	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			digest := fmt.Sprintf("digest-%d", i)
			errs <- b.Put(context.Background(), record("racer", digest, time.Minute, "/"+digest))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	if n := mustCount(t, b); n != 1 {
		t.Fatalf("Count() = %d, want exactly one record", n)
	}
	got, err := b.Get(context.Background(), "racer")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.OriginURL != "/"+got.HashedToken {
		t.Errorf("record mixes fields from different writes: %+v", got)
	}
}
