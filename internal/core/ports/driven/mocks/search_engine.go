package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
)

// MockSearchEngine is an in-memory SearchEngine for testing.
// Lexical matching is naive substring scoring over the weighted fields;
// semantic matching treats the sparse query (or the original lexical
// text for dense requests) the same way. Good enough to exercise
// ranking, fusion and error paths.
type MockSearchEngine struct {
	mu       sync.RWMutex
	products []*domain.Product

	nativeFusion bool
	indexExists  bool

	// FailNext makes the next n Search calls return FailErr
	failNext int
	failErr  error

	// LastRequest records the most recent query spec for assertions
	LastRequest driven.SearchRequest
	Calls       int
}

// NewMockSearchEngine creates a new MockSearchEngine with native fusion
// enabled and an existing index.
func NewMockSearchEngine() *MockSearchEngine {
	return &MockSearchEngine{nativeFusion: true, indexExists: true}
}

// SetNativeFusion toggles the advertised fusion capability.
func (m *MockSearchEngine) SetNativeFusion(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nativeFusion = v
}

// SetIndexExists toggles the advertised index presence.
func (m *MockSearchEngine) SetIndexExists(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexExists = v
}

// FailNext makes the next n Search calls fail with err.
func (m *MockSearchEngine) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failErr = err
}

func (m *MockSearchEngine) Index(_ context.Context, products []*domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, products...)
	return nil
}

func (m *MockSearchEngine) Search(_ context.Context, req driven.SearchRequest) ([]driven.Hit, int, error) {
	m.mu.Lock()
	m.Calls++
	m.LastRequest = req
	if m.failNext > 0 {
		m.failNext--
		err := m.failErr
		m.mu.Unlock()
		return nil, 0, err
	}
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	query := ""
	if req.Lexical != nil {
		query = req.Lexical.Query
	} else if req.Vector != nil {
		query = req.Vector.SparseQuery
	}

	var hits []driven.Hit
	for _, p := range m.products {
		score := m.score(p, query)
		if score > 0 {
			hits = append(hits, driven.Hit{Product: p, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	total := len(hits)
	if req.Size > 0 && len(hits) > req.Size {
		hits = hits[:req.Size]
	}
	return hits, total, nil
}

// score counts query terms appearing in the product's text fields.
func (m *MockSearchEngine) score(p *domain.Product, query string) float64 {
	if p == nil || query == "" {
		return 0
	}
	haystack := strings.ToLower(p.Name + " " + p.Category + " " + p.Description + " " + strings.Join(p.Features, " "))
	score := 0.0
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(haystack, term) {
			score += 1.0
		}
	}
	return score
}

// ProductCount returns the number of indexed products.
func (m *MockSearchEngine) ProductCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products)
}

// Product returns an indexed product by id, or nil.
func (m *MockSearchEngine) Product(id string) *domain.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (m *MockSearchEngine) IndexExists(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexExists, nil
}

func (m *MockSearchEngine) SupportsNativeFusion() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nativeFusion
}

func (m *MockSearchEngine) HealthCheck(_ context.Context) error {
	return nil
}
