// Package blob stores clipboard image bytes outside the database. The
// history store persists only the path reference returned by Save.
package blob

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pastego/pastego/internal/classify"
)

// Store is the image blob storage collaborator.
type Store interface {
	// Save writes the bytes and returns a stable path reference.
	Save(data []byte) (string, error)

	// Load reads the bytes behind a path reference.
	Load(pathRef string) ([]byte, error)
}

// FileStore keeps blobs as hash-named files under a single directory.
// Saving the same bytes twice yields the same path.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save writes data to <dir>/<hash-prefix>.png and returns the path.
func (s *FileStore) Save(data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating blob directory %s: %w", s.dir, err)
	}

	hash := classify.HashBytes(data)
	path := filepath.Join(s.dir, hash[:16]+".png")

	// Content-addressed: an existing file already holds these bytes.
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", path, err)
	}
	return path, nil
}

// Load reads the bytes behind a previously returned path reference.
func (s *FileStore) Load(pathRef string) ([]byte, error) {
	data, err := os.ReadFile(pathRef)
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", pathRef, err)
	}
	return data, nil
}
