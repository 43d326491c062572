package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
)

// MockLLMService returns scripted responses in order and records the
// message sequences it received.
type MockLLMService struct {
	mu              sync.Mutex
	responses       []string
	defaultResponse string

	failNext int
	failErr  error

	// Calls records every Complete invocation for assertions
	Calls []MockLLMCall
}

// MockLLMCall captures one Complete invocation.
type MockLLMCall struct {
	Messages []domain.Turn
	Options  driven.CompletionOptions
}

// NewMockLLMService creates a mock with a generic default response.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{defaultResponse: "mock response"}
}

// Script queues responses to return in order; once exhausted the
// default response is returned.
func (m *MockLLMService) Script(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// SetDefault changes the fallback response.
func (m *MockLLMService) SetDefault(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultResponse = response
}

// FailNext makes the next n Complete calls fail with err.
func (m *MockLLMService) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failErr = err
}

func (m *MockLLMService) Complete(_ context.Context, messages []domain.Turn, opts driven.CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]domain.Turn, len(messages))
	copy(msgs, messages)
	m.Calls = append(m.Calls, MockLLMCall{Messages: msgs, Options: opts})

	if m.failNext > 0 {
		m.failNext--
		return "", m.failErr
	}
	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		return resp, nil
	}
	return m.defaultResponse, nil
}

func (m *MockLLMService) Model() string { return "mock-llm" }

func (m *MockLLMService) Ping(_ context.Context) error { return nil }

func (m *MockLLMService) Close() error { return nil }
