package driven

import (
	"context"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// CompletionOptions tunes a single completion call.
type CompletionOptions struct {
	// Temperature controls sampling variability; lower values give more
	// deterministic, rule-following output
	Temperature float64

	// MaxTokens bounds the generated output length
	MaxTokens int
}

// LLMService provides chat completions for reformulation and grounded
// answer generation
type LLMService interface {
	// Complete sends an ordered message sequence and returns the
	// generated text
	Complete(ctx context.Context, messages []domain.Turn, opts CompletionOptions) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
