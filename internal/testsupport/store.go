package testsupport

import (
	"context"
	"testing"

	"curator/internal/asset"
	"curator/internal/config"
	"curator/internal/storage"
)

// MustOpenStore opens a storage.FileStore for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *storage.FileStore {
	t.Helper()

	store, err := storage.Open(cfg.Paths.StorageDir)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustAdd stores an asset for tests and returns its identifier.
func MustAdd(t testing.TB, store storage.Storage, a *asset.Asset) string {
	t.Helper()

	id, err := store.Add(context.Background(), a)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return id
}
