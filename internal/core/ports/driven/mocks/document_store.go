package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// MockDocumentStore is an in-memory DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document

	// Transitions records every status written, for asserting the legal path.
	Transitions map[string][]domain.DocumentStatus
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents:   make(map[string]*domain.Document),
		Transitions: make(map[string][]domain.DocumentStatus),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *doc
	m.documents[doc.ID] = &copied
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *MockDocumentStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var docs []*domain.Document
	for _, doc := range m.documents {
		if doc.UserID == userID {
			copied := *doc
			docs = append(docs, &copied)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	if offset >= len(docs) {
		return nil, nil
	}
	docs = docs[offset:]
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (m *MockDocumentStore) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	m.Transitions[id] = append(m.Transitions[id], status)
	return nil
}

func (m *MockDocumentStore) SaveRawText(ctx context.Context, id string, rawText string, status domain.DocumentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.RawText = &rawText
	doc.Status = status
	m.Transitions[id] = append(m.Transitions[id], status)
	return nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	return nil
}
