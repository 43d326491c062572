package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven/mocks"
)

func TestGenerate_PromptStructure(t *testing.T) {
	llm := mocks.NewMockLLMService()
	llm.Script("The ProBook Creator 16 costs $1,899.00.")
	g := NewResponseGenerator(llmServices(llm), GeneratorConfig{Temperature: 0.7, MaxTokens: 500}, nil)

	history := domain.NewHistory(10)
	history.Append(domain.RoleUser, "show me laptops")
	history.Append(domain.RoleAssistant, "Here are two laptops...")

	answer, err := g.Generate(context.Background(), "which is cheapest?", "Product 1:\n- Name: ProBook", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "The ProBook Creator 16 costs $1,899.00." {
		t.Errorf("unexpected answer %q", answer)
	}

	call := llm.Calls[0]
	if call.Messages[0].Role != domain.RoleSystem {
		t.Fatal("expected the grounding instruction first")
	}
	if !strings.Contains(call.Messages[0].Content, "Only answer questions using information") {
		t.Error("expected grounding rules in the system prompt")
	}
	// Carried history sits between the system prompt and the question.
	if call.Messages[1].Content != "show me laptops" || call.Messages[2].Content != "Here are two laptops..." {
		t.Error("expected carried conversation turns in order")
	}
	last := call.Messages[len(call.Messages)-1]
	if !strings.Contains(last.Content, "PRODUCT INFORMATION:") ||
		!strings.Contains(last.Content, "Product 1:") ||
		!strings.Contains(last.Content, "which is cheapest?") {
		t.Errorf("expected context-annotated question, got %q", last.Content)
	}
	if call.Options.Temperature != 0.7 || call.Options.MaxTokens != 500 {
		t.Errorf("unexpected completion options %+v", call.Options)
	}
}

func TestGenerate_ControlledModeUsesStrictPrompt(t *testing.T) {
	llm := mocks.NewMockLLMService()
	g := NewResponseGenerator(llmServices(llm), GeneratorConfig{Temperature: 0.3, Controlled: true}, nil)

	_, err := g.Generate(context.Background(), "q", "ctx", domain.NewHistory(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(llm.Calls[0].Messages[0].Content, "STRICT RULES") {
		t.Error("expected the strict system prompt in controlled mode")
	}
}

func TestGenerate_FailureSurfaced(t *testing.T) {
	llm := mocks.NewMockLLMService()
	llm.FailNext(1, errors.New("rate limited"))
	g := NewResponseGenerator(llmServices(llm), GeneratorConfig{}, nil)

	_, err := g.Generate(context.Background(), "q", "ctx", domain.NewHistory(10))
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected generation failure, got %v", err)
	}
	// Generation is never retried automatically.
	if len(llm.Calls) != 1 {
		t.Errorf("expected exactly 1 call, got %d", len(llm.Calls))
	}
}

func TestGenerate_EmptyResponseIsFailure(t *testing.T) {
	llm := mocks.NewMockLLMService()
	llm.Script("  ")
	g := NewResponseGenerator(llmServices(llm), GeneratorConfig{}, nil)

	_, err := g.Generate(context.Background(), "q", "ctx", domain.NewHistory(10))
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected generation failure on empty output, got %v", err)
	}
}

func TestGenerate_NoLLMConfigured(t *testing.T) {
	g := NewResponseGenerator(llmServices(nil), GeneratorConfig{}, nil)

	_, err := g.Generate(context.Background(), "q", "ctx", domain.NewHistory(10))
	if !errors.Is(err, domain.ErrGenerationFailed) || !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected generation failure with unavailable cause, got %v", err)
	}
}
