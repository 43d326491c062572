package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOllama:
		return NewOllamaEmbedding(settings.BaseURL, settings.Model)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// CreateLLMService creates an LLM service from settings
func (f *Factory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return NewOpenAILLM(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOllama:
		return NewOllamaLLM(settings.BaseURL, settings.Model)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// Ollama exposes an OpenAI-compatible API under /v1, so both Ollama
// adapters reuse the OpenAI clients without an API key.

const defaultOllamaURL = "http://localhost:11434"

func newOpenAIClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

func NewOllamaEmbedding(baseURL, model string) (driven.EmbeddingService, error) {
	if model == "" {
		return nil, fmt.Errorf("Ollama embedding model is required")
	}
	return &OpenAIEmbedding{
		apiKey:     "",
		model:      model,
		baseURL:    ollamaV1(baseURL),
		dimensions: 768, // nomic-embed-text and friends
		client:     newOpenAIClient(),
	}, nil
}

func NewOllamaLLM(baseURL, model string) (driven.LLMService, error) {
	if model == "" {
		return nil, fmt.Errorf("Ollama LLM model is required")
	}
	return &OpenAILLM{
		apiKey:  "",
		model:   model,
		baseURL: ollamaV1(baseURL),
		client:  newOpenAIClient(),
	}, nil
}

func ollamaV1(baseURL string) string {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL += "/v1"
	}
	return baseURL
}
