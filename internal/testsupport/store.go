package testsupport

import (
	"context"
	"testing"

	"github.com/KnierimLab/phy/internal/config"
	"github.com/KnierimLab/phy/internal/session"
)

// MustOpenStore opens a session.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *session.Store {
	t.Helper()

	store, err := session.Open(cfg)
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// ImportSnapshot imports the snapshot into the store for tests.
func ImportSnapshot(t testing.TB, store *session.Store, snap *session.Snapshot) *session.Info {
	t.Helper()

	info, err := store.ImportSnapshot(context.Background(), snap, "")
	if err != nil {
		t.Fatalf("store.ImportSnapshot: %v", err)
	}
	return info
}
