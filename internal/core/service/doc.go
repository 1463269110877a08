// Package service implements the passwordless token store.
//
// Store enforces the token lifecycle on top of two injected capabilities:
// a Backend that persists one TokenRecord per user and a HashProvider that
// turns tokens into salted digests. The store owns its backend session,
// acquiring it on first use and releasing it on Clear and Close.
//
//	store := service.NewStore(service.StaticConnector(memory.New()), hasher)
//	err := store.StoreOrUpdate(ctx, tok, "alice", 15*time.Minute, "/dashboard")
//	ok, origin, err := store.Authenticate(ctx, tok, "alice")
//
// Expiry is evaluated lazily at read time; nothing sweeps expired records.
package service
