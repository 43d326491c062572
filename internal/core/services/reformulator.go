package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/shopchat-core/internal/runtime"
)

const reformulationInstruction = "Given a conversation history and the latest question, " +
	"create a standalone search query that captures the user's intent. " +
	"Return ONLY the search query, nothing else."

// Reformulation wants deterministic output, so the call runs cold and
// short regardless of the chat temperature.
const (
	reformulationTemperature = 0.3
	reformulationMaxTokens   = 50
	reformulationHistoryTail = 4 // last two exchanges
)

// QueryReformulator rewrites a follow-up utterance into a standalone
// search query using the recent conversation. It never blocks
// retrieval: any failure falls back to the raw utterance.
type QueryReformulator struct {
	services *runtime.Services
	logger   *slog.Logger
}

// NewQueryReformulator creates a new QueryReformulator.
// The LLM service is accessed dynamically via runtime.Services.
func NewQueryReformulator(services *runtime.Services, logger *slog.Logger) *QueryReformulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryReformulator{services: services, logger: logger}
}

// Reformulate returns a standalone search query for the current
// utterance. A single opening question has no antecedent to resolve, so
// reformulation only happens once the history holds more than one prior
// user turn.
func (q *QueryReformulator) Reformulate(ctx context.Context, utterance string, history *domain.History) string {
	if history == nil || history.UserTurns() <= 1 {
		return utterance
	}

	llm := q.services.LLMService()
	if llm == nil {
		return utterance
	}

	messages := make([]domain.Turn, 0, reformulationHistoryTail+2)
	messages = append(messages, domain.Turn{Role: domain.RoleSystem, Content: reformulationInstruction})
	for _, t := range history.LastN(reformulationHistoryTail) {
		if t.Role == domain.RoleSystem {
			continue
		}
		messages = append(messages, t)
	}
	messages = append(messages, domain.Turn{
		Role:    domain.RoleUser,
		Content: "Create a standalone search query for: " + utterance,
	})

	rewritten, err := llm.Complete(ctx, messages, driven.CompletionOptions{
		Temperature: reformulationTemperature,
		MaxTokens:   reformulationMaxTokens,
	})
	if err != nil {
		q.logger.Warn("query reformulation failed, using raw utterance", "error", err)
		return utterance
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return utterance
	}
	return rewritten
}
