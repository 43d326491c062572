package domain

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// RequiresAPIKey returns true if the provider needs an API key
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// EmbeddingMethod selects how semantic retrieval represents queries.
// The two methods are mutually exclusive alternatives, not combined.
type EmbeddingMethod string

const (
	// EmbeddingDense uses an external embedding provider and kNN search.
	EmbeddingDense EmbeddingMethod = "dense"

	// EmbeddingSparse uses the backend's learned term expansion model
	// (ELSER-style); no external embedding provider is involved.
	EmbeddingSparse EmbeddingMethod = "sparse"
)

// Valid reports whether the method is a known constant.
func (m EmbeddingMethod) Valid() bool {
	return m == EmbeddingDense || m == EmbeddingSparse
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the LLM service
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}
