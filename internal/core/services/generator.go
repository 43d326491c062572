package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/shopchat-core/internal/runtime"
)

// ragSystemPrompt enumerates the grounding rules for conversational mode.
const ragSystemPrompt = `You are a helpful product assistant for an electronics store.

RULES:
1. Only answer questions using information from the provided product search results
2. If no relevant products are found, say "I don't have information about that"
3. Always include product names and prices in your recommendations
4. Do not make up specifications, features, or prices
5. Be concise (max 3-4 sentences per product mentioned)
6. If asked about something outside the product catalog, politely decline

You have access to the conversation history. Use it to understand references like
"it", "that one", "the first one", and to compare with products mentioned earlier.`

// controlledSystemPrompt tightens the rules for controlled-response mode.
const controlledSystemPrompt = `You are a professional product assistant for an electronics store.

STRICT RULES - YOU MUST FOLLOW THESE:
1. Only use provided data: answer ONLY based on the product information given. Never make up specifications, prices, or features.
2. Admit ignorance: if the information is not in the search results, say "I don't have that information in my database."
3. Be accurate with numbers: state exact prices, ratings, and specifications. Do not round or estimate.
4. Stay on topic: only answer questions about products. Politely decline anything else.
5. Response format: start with a direct answer, include product name(s) and price(s), keep responses under 150 words.
6. Tone: professional, helpful, concise. No marketing speak, no superlatives.
7. Never claim products are in stock or make promises about availability.`

// GeneratorConfig holds the generation tuning read once at startup.
type GeneratorConfig struct {
	Temperature float64 // lower for controlled mode, higher for conversational
	MaxTokens   int
	Controlled  bool // strict prompt with tightened rules
}

// ResponseGenerator builds the grounded prompt and issues the
// generation call. Generation is not retried: a partial generation is
// not safely resumable.
type ResponseGenerator struct {
	services *runtime.Services
	cfg      GeneratorConfig
	logger   *slog.Logger
}

// NewResponseGenerator creates a new ResponseGenerator.
// The LLM service is accessed dynamically via runtime.Services.
func NewResponseGenerator(services *runtime.Services, cfg GeneratorConfig, logger *slog.Logger) *ResponseGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	return &ResponseGenerator{services: services, cfg: cfg, logger: logger}
}

// Generate produces a grounded answer for the question using the
// assembled context and the carried conversation.
func (g *ResponseGenerator) Generate(ctx context.Context, question, contextBlock string, history *domain.History) (string, error) {
	llm := g.services.LLMService()
	if llm == nil {
		return "", fmt.Errorf("%w: %w: no LLM service configured", domain.ErrGenerationFailed, domain.ErrServiceUnavailable)
	}

	messages := g.buildMessages(question, contextBlock, history)

	answer, err := llm.Complete(ctx, messages, driven.CompletionOptions{
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned empty response", domain.ErrGenerationFailed)
	}
	return answer, nil
}

// buildMessages assembles the prompt: the fixed system instruction, the
// carried conversation turns, then the current question annotated with
// the freshly assembled context.
func (g *ResponseGenerator) buildMessages(question, contextBlock string, history *domain.History) []domain.Turn {
	system := ragSystemPrompt
	if g.cfg.Controlled {
		system = controlledSystemPrompt
	}

	messages := []domain.Turn{{Role: domain.RoleSystem, Content: system}}

	if history != nil {
		for _, t := range history.Messages() {
			if t.Role == domain.RoleSystem {
				continue
			}
			messages = append(messages, t)
		}
	}

	messages = append(messages, domain.Turn{
		Role: domain.RoleUser,
		Content: fmt.Sprintf(
			"Based on the following product information, answer the user's question.\n\n"+
				"PRODUCT INFORMATION:\n%s\n\n"+
				"USER QUESTION:\n%s",
			contextBlock, question,
		),
	})
	return messages
}
