package testsupport

import (
	"context"
	"testing"

	"zennovel/internal/config"
	"zennovel/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewNovel creates a novel for tests using the provided store.
func NewNovel(t testing.TB, store *library.Store, title string) *library.Novel {
	t.Helper()

	novel, err := store.CreateNovel(context.Background(), library.Novel{Title: title})
	if err != nil {
		t.Fatalf("store.CreateNovel: %v", err)
	}
	return novel
}
