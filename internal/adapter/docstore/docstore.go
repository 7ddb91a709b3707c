// Package docstore stores uploaded ledger documents on the local
// filesystem, keyed by the relative path handed out at upload time.
package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/famshare/famshare-backend/internal/domain"
)

// Store implements domain.DocumentStore under a root directory.
type Store struct {
	root string
}

// NewStore creates a document store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Get returns the raw bytes of the document behind handle.
func (s *Store) Get(_ context.Context, handle string) ([]byte, error) {
	path, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", handle, err)
	}
	return content, nil
}

// Delete removes the processed document. A handle that no longer exists is
// not an error; processing may have been retried.
func (s *Store) Delete(_ context.Context, handle string) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document %s: %w", handle, err)
	}
	return nil
}

// resolve confines handles to the root directory.
func (s *Store) resolve(handle string) (string, error) {
	path := filepath.Join(s.root, filepath.Clean("/"+handle))
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid handle %q", domain.ErrSourceUnreadable, handle)
	}
	return path, nil
}
