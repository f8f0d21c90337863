package mocks

import (
	"context"
	"fmt"
	"sync"
)

// MockFileStore is an in-memory FileStore for testing
type MockFileStore struct {
	SaveFn   func(ctx context.Context, userID, filename string, content []byte) (string, error)
	DeleteFn func(ctx context.Context, path string) error

	mu    sync.Mutex
	files map[string][]byte

	// Deleted records the paths passed to Delete.
	Deleted []string
}

// NewMockFileStore creates a new MockFileStore
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{files: make(map[string][]byte)}
}

func (m *MockFileStore) Save(ctx context.Context, userID, filename string, content []byte) (string, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, userID, filename, content)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("/uploads/%s/%s", userID, filename)
	m.files[path] = content
	return path, nil
}

func (m *MockFileStore) Delete(ctx context.Context, path string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	m.Deleted = append(m.Deleted, path)
	return nil
}

// Content returns the stored bytes for path, if any.
func (m *MockFileStore) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	return content, ok
}
