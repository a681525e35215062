package testsupport

import (
	"testing"

	"subforge/internal/chunkcache"
	"subforge/internal/config"
)

// MustOpenCache opens the chunk cache configured in cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *chunkcache.Store {
	t.Helper()

	store, err := chunkcache.Open(cfg.Cache.Path)
	if err != nil {
		t.Fatalf("chunkcache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
