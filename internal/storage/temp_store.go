package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// MustGetTempStore returns a BoltStore backed by a file in a fresh temporary
// directory, and a cleanup function that should be called when the store is
// no longer used.
func MustGetTempStore() (*BoltStore, func()) {
	dir, err := os.MkdirTemp("", "empower.test")
	if err != nil {
		panic(fmt.Sprintf("Failed to create temp dir: %v", err))
	}
	st, err := Open(filepath.Join(dir, "store.db"))
	if err != nil {
		panic(fmt.Sprintf("Failed to create store: %v", err))
	}
	return st, func() {
		st.Close()
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintln(os.Stderr, "failed to remove temp dir:", err)
		}
	}
}
