package domain

import "sync"

// RuntimeConfig tracks which AI capabilities are available.
// The embedding method is fixed at startup; service availability can
// change when AI services are (re)configured. Thread-safe.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	EmbeddingMethod EmbeddingMethod

	// Dynamic capability flags (updated when AI services change)
	embeddingAvailable bool
	llmAvailable       bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(method EmbeddingMethod) *RuntimeConfig {
	if !method.Valid() {
		method = EmbeddingSparse
	}
	return &RuntimeConfig{EmbeddingMethod: method}
}

// EmbeddingAvailable returns whether the embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether the LLM service is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// CanDoSemanticSearch returns true if semantic retrieval is possible.
// Sparse queries are expanded inside the search backend, so they never
// depend on an external embedding service.
func (c *RuntimeConfig) CanDoSemanticSearch() bool {
	if c.EmbeddingMethod == EmbeddingSparse {
		return true
	}
	return c.EmbeddingAvailable()
}

// CanDoLLMAssisted returns true if LLM features (reformulation,
// generation) are available
func (c *RuntimeConfig) CanDoLLMAssisted() bool {
	return c.LLMAvailable()
}

// EffectiveRetrievalMode returns the best available retrieval mode
func (c *RuntimeConfig) EffectiveRetrievalMode() RetrievalMode {
	if c.CanDoSemanticSearch() {
		return RetrievalModeHybrid
	}
	return RetrievalModeLexicalOnly
}
