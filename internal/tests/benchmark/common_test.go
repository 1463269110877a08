package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/pwdless-go/internal/core/service"
	"github.com/yndnr/pwdless-go/internal/storage"
	"github.com/yndnr/pwdless-go/internal/storage/memory"
	"github.com/yndnr/pwdless-go/internal/telemetry/logger"
	"github.com/yndnr/pwdless-go/pkg/hash"
	"github.com/yndnr/pwdless-go/pkg/token"
)

// UserCounts defines the number of stored users for lookup benchmarks.
var UserCounts = []int{100, 1000, 10000}

type backendCase struct {
	name    string
	connect func() service.Connector
}

var backends = []backendCase{
	{
		name: "memory",
		connect: func() service.Connector {
			return service.StaticConnector(memory.New())
		},
	},
	{
		name: "badger",
		connect: func() service.Connector {
			cfg := storage.DefaultBadgerConfig()
			cfg.Dir = ""
			cfg.InMemory = true
			cfg.GCInterval = 0
			return storage.NewBadgerConnector(cfg, logger.Nop())
		},
	},
}

// newStore builds a store with the cheapest bcrypt cost so benchmarks
// measure the store rather than the hash.
func newStore(b *testing.B, connector service.Connector) *service.Store {
	b.Helper()
	hasher, err := hash.NewBcrypt(bcrypt.MinCost)
	if err != nil {
		b.Fatalf("NewBcrypt failed: %v", err)
	}
	store := service.NewStore(connector, hasher, service.WithLogger(logger.Nop()))
	b.Cleanup(func() { _ = store.Close() })
	return store
}

// prefill stores one token per user and returns the plaintext tokens.
func prefill(ctx context.Context, b *testing.B, store *service.Store, count int) []string {
	b.Helper()
	tokens := make([]string, count)
	for i := 0; i < count; i++ {
		tok, err := token.Generate()
		if err != nil {
			b.Fatalf("Generate failed: %v", err)
		}
		if err := store.StoreOrUpdate(ctx, tok, userID(i), time.Hour, ""); err != nil {
			b.Fatalf("StoreOrUpdate failed: %v", err)
		}
		tokens[i] = tok
	}
	return tokens
}

func userID(i int) string {
	return fmt.Sprintf("user-%d@example.com", i)
}
