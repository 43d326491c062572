package mocks

import (
	"context"
	"sync"
)

// MockEmbeddingService is a deterministic in-memory embedding service.
// Vectors are derived from character sums, so identical texts always
// embed identically.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int

	failNext int
	failErr  error

	// Requests records every embedded text for assertions
	Requests []string
}

// NewMockEmbeddingService creates a mock with 8-dimensional vectors.
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{dimensions: 8}
}

// FailNext makes the next n calls fail with err.
func (m *MockEmbeddingService) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failErr = err
}

func (m *MockEmbeddingService) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return nil, m.failErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		m.Requests = append(m.Requests, t)
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := m.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *MockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, m.dimensions)
	for i, r := range text {
		v[i%m.dimensions] += float32(r) / 1000
	}
	return v
}

func (m *MockEmbeddingService) Dimensions() int { return m.dimensions }

func (m *MockEmbeddingService) Model() string { return "mock-embedding" }

func (m *MockEmbeddingService) HealthCheck(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return m.failErr
	}
	return nil
}

func (m *MockEmbeddingService) Close() error { return nil }
