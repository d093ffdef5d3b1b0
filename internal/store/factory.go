package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// NewStore builds a Store for the given backend kind.
//
// Supported kinds:
//   - "fs": JSON files under <baseDir>/jobs/<jobID>/
//   - "sqlite": a single database at <baseDir>/checkpoints.db
func NewStore(kind, baseDir string) (Store, error) {
	switch kind {
	case "fs":
		return NewFSStore(baseDir)
	case "sqlite":
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(baseDir, "checkpoints.db"))
	default:
		return nil, fmt.Errorf("unknown store backend %q (want fs or sqlite)", kind)
	}
}

// CloseIfSupported closes the store when the backend holds resources
// (the SQLite backend does, the filesystem one does not).
func CloseIfSupported(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
