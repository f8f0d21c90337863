package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/atria-labs/vitals-core/internal/core/ports/driven"
)

// Ensure FileStore implements driven.FileStore
var _ driven.FileStore = (*FileStore)(nil)

// FileStore keeps uploaded files on the local disk, one directory per user.
// Stored names are prefixed with a random ID so repeated uploads of the same
// filename never collide.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("upload root is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Save writes content under root/userID and returns the stored path.
func (s *FileStore) Save(ctx context.Context, userID, filename string, content []byte) (string, error) {
	// Strip any directory components a client smuggled into the name.
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	dir := filepath.Join(s.root, userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create user directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+"_"+name)
	if err := os.WriteFile(path, content, 0o640); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context, path string) error {
	// Refuse paths outside the upload root.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) {
		return fmt.Errorf("path %q outside upload root", path)
	}

	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
