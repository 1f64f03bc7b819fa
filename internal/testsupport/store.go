package testsupport

import (
	"context"
	"testing"

	"reelmatch/internal/config"
	"reelmatch/internal/posterstore"
)

// MustOpenStore opens a posterstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *posterstore.Store {
	t.Helper()

	store, err := posterstore.Open(cfg)
	if err != nil {
		t.Fatalf("posterstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedPoster stores a resolved poster URL for title.
func SeedPoster(t testing.TB, store *posterstore.Store, title, posterURL string) {
	t.Helper()

	if err := store.Put(context.Background(), title, posterURL); err != nil {
		t.Fatalf("store.Put: %v", err)
	}
}
