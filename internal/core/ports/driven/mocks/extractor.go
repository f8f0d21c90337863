package mocks

import (
	"context"

	"github.com/atria-labs/vitals-core/internal/core/domain"
)

// MockDocumentExtractor is a mock implementation of DocumentExtractor for testing
type MockDocumentExtractor struct {
	ExtractFn     func(ctx context.Context, path string) (string, error)
	HealthCheckFn func(ctx context.Context) domain.ServiceHealth

	// ExtractedPaths records the paths passed to Extract.
	ExtractedPaths []string
}

func NewMockDocumentExtractor() *MockDocumentExtractor {
	return &MockDocumentExtractor{}
}

func (m *MockDocumentExtractor) Extract(ctx context.Context, path string) (string, error) {
	m.ExtractedPaths = append(m.ExtractedPaths, path)
	if m.ExtractFn != nil {
		return m.ExtractFn(ctx, path)
	}
	return "extracted text", nil
}

func (m *MockDocumentExtractor) HealthCheck(ctx context.Context) domain.ServiceHealth {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return domain.ServiceHealth{Status: domain.HealthConnected}
}
