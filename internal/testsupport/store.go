package testsupport

import (
	"path/filepath"
	"testing"

	"softalign/internal/dataset"
)

// MustOpenStore opens a dataset store inside dir and registers cleanup.
func MustOpenStore(t testing.TB, dir string) *dataset.Store {
	t.Helper()

	store, err := dataset.OpenStore(filepath.Join(dir, dataset.StoreName))
	if err != nil {
		t.Fatalf("open dataset store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close dataset store: %v", err)
		}
	})
	return store
}
