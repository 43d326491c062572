// Package config loads the pipeline configuration from a YAML file
// with environment variable overrides for credentials and endpoints.
// Configuration is read once at startup and immutable afterwards.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// Config holds all configuration for the shopping assistant.
type Config struct {
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Chat          ChatConfig          `yaml:"chat"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	LLM           LLMConfig           `yaml:"llm"`
	Redis         RedisConfig         `yaml:"redis"`
	Retry         RetryConfig         `yaml:"retry"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ElasticsearchConfig holds search backend connection settings.
type ElasticsearchConfig struct {
	URL      string `yaml:"url"`
	Index    string `yaml:"index"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	APIKey   string `yaml:"api_key"`

	// NativeFusion requires Elasticsearch 8.14+ with the rrf retriever
	NativeFusion bool `yaml:"native_fusion"`
}

// RetrievalConfig holds hybrid retrieval tuning.
type RetrievalConfig struct {
	TopK          int `yaml:"top_k"`
	NumCandidates int `yaml:"num_candidates"`
	RankConstant  int `yaml:"rank_constant"`
	WindowSize    int `yaml:"window_size"`
}

// ChatConfig holds conversation and generation settings.
type ChatConfig struct {
	MaxHistoryTurns int     `yaml:"max_history_turns"`
	MaxContextDocs  int     `yaml:"max_context_docs"`
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`

	// Controlled switches to the strict response-policy prompt
	Controlled bool `yaml:"controlled"`

	// MaxResponseWords is the validator's conciseness ceiling
	MaxResponseWords int `yaml:"max_response_words"`
}

// EmbeddingConfig holds the semantic retrieval settings.
type EmbeddingConfig struct {
	// Method is "sparse" (ELSER, engine-side) or "dense" (external provider)
	Method    string `yaml:"method"`
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// LLMConfig holds the generation provider settings.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// RedisConfig holds session persistence settings. An empty address
// disables persistence.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// RetryConfig bounds retries of transient collaborator failures.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
	MaxDelay    Duration `yaml:"max_delay"`
}

// Duration decodes YAML duration strings like "500ms" or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Elasticsearch: ElasticsearchConfig{
			URL:          "http://localhost:9200",
			Index:        "products",
			NativeFusion: true,
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			NumCandidates: 50,
			RankConstant:  60,
			WindowSize:    50,
		},
		Chat: ChatConfig{
			MaxHistoryTurns:  10,
			MaxContextDocs:   3,
			Temperature:      0.7,
			MaxTokens:        500,
			MaxResponseWords: 200,
		},
		Embedding: EmbeddingConfig{
			Method:    string(domain.EmbeddingSparse),
			Provider:  string(domain.AIProviderOpenAI),
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		LLM: LLMConfig{
			Provider:  string(domain.AIProviderOpenAI),
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Redis: RedisConfig{
			TTL: Duration(24 * time.Hour),
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   Duration(time.Second),
			MaxDelay:    Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, cfg.Validate()
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// LoadFromDir loads configuration from a directory (looks for
// shopchat.yaml, then .shopchat/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "shopchat.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".shopchat", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// applyEnv overrides credentials and endpoints from the environment.
// Secrets never live in the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("ELASTICSEARCH_URL"); v != "" {
		c.Elasticsearch.URL = v
	}
	if v := os.Getenv("ELASTICSEARCH_USERNAME"); v != "" {
		c.Elasticsearch.Username = v
	}
	if v := os.Getenv("ELASTICSEARCH_PASSWORD"); v != "" {
		c.Elasticsearch.Password = v
	}
	if v := os.Getenv("ELASTICSEARCH_API_KEY"); v != "" {
		c.Elasticsearch.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("EMBEDDING_METHOD"); v != "" {
		c.Embedding.Method = v
	}
}

// Validate checks the loaded configuration for contradictions.
func (c *Config) Validate() error {
	if !domain.EmbeddingMethod(c.Embedding.Method).Valid() {
		return fmt.Errorf("%w: embedding method %q", domain.ErrInvalidInput, c.Embedding.Method)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval top_k must be positive", domain.ErrInvalidInput)
	}
	if c.Chat.MaxHistoryTurns <= 0 {
		return fmt.Errorf("%w: max_history_turns must be positive", domain.ErrInvalidInput)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w: retry max_attempts must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// EmbeddingSettings resolves the embedding provider settings, reading
// the API key from the configured environment variable.
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider: domain.AIProvider(c.Embedding.Provider),
		Model:    c.Embedding.Model,
		APIKey:   os.Getenv(c.Embedding.APIKeyEnv),
		BaseURL:  c.Embedding.BaseURL,
	}
}

// LLMSettings resolves the LLM provider settings, reading the API key
// from the configured environment variable.
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: domain.AIProvider(c.LLM.Provider),
		Model:    c.LLM.Model,
		APIKey:   os.Getenv(c.LLM.APIKeyEnv),
		BaseURL:  c.LLM.BaseURL,
	}
}

// Method returns the configured embedding method.
func (c *Config) Method() domain.EmbeddingMethod {
	return domain.EmbeddingMethod(c.Embedding.Method)
}
