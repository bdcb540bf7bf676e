// Package imagestore persists uploaded recipe images on the local
// filesystem under <root>/recipe/.
package imagestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes uploads under a root directory. Stored paths are returned
// with forward slashes and are rooted at the configured directory.
type Store struct {
	root string
}

// New returns a Store rooted at the given directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Save writes the payload to <root>/recipe/<uuid><ext> and returns the
// path. The name is freshly generated per upload, so an existing file is
// never reused or overwritten; only the extension of the original filename
// is preserved.
func (s *Store) Save(ext string, data []byte) (string, error) {
	dir := filepath.Join(s.root, "recipe")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return filepath.ToSlash(path), nil
}

// Remove deletes a previously stored file. A missing file is not an error.
func (s *Store) Remove(path string) error {
	err := os.Remove(filepath.FromSlash(path))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
