package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driving"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// declineResponse is the polite answer for turns where nothing matched.
// Empty retrieval is a valid outcome, not an error.
const declineResponse = "I don't have information about that in my product database. " +
	"Could you rephrase your question?"

// ChatConfig wires one conversational session.
type ChatConfig struct {
	Retriever    driving.RetrievalService
	Reformulator *QueryReformulator
	Assembler    *ContextAssembler
	Generator    *ResponseGenerator
	Validator    *ResponseValidator

	// SessionStore persists history between runs (optional)
	SessionStore driven.SessionStore
	SessionID    string

	MaxHistoryTurns int
	TopK            int

	Logger *slog.Logger
}

// chatService runs the per-turn pipeline for a single session:
// reformulate, retrieve, assemble, generate, validate. Turns are
// strictly sequential; history is mutated only by this service.
type chatService struct {
	retriever    driving.RetrievalService
	reformulator *QueryReformulator
	assembler    *ContextAssembler
	generator    *ResponseGenerator
	validator    *ResponseValidator

	store     driven.SessionStore
	sessionID string

	history *domain.History
	topK    int
	logger  *slog.Logger
}

// NewChatService creates a ChatService. If a session store is
// configured and holds a snapshot for the session, the conversation
// resumes from it.
func NewChatService(ctx context.Context, cfg ChatConfig) driving.ChatService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	history := domain.NewHistory(cfg.MaxHistoryTurns)
	if cfg.SessionStore != nil && cfg.SessionID != "" {
		turns, err := cfg.SessionStore.LoadHistory(ctx, cfg.SessionID)
		switch {
		case err == nil:
			history = domain.RestoreHistory(cfg.MaxHistoryTurns, turns)
		case errors.Is(err, domain.ErrNotFound):
			// Fresh session.
		default:
			logger.Warn("could not restore session history", "session", cfg.SessionID, "error", err)
		}
	}

	return &chatService{
		retriever:    cfg.Retriever,
		reformulator: cfg.Reformulator,
		assembler:    cfg.Assembler,
		generator:    cfg.Generator,
		validator:    cfg.Validator,
		store:        cfg.SessionStore,
		sessionID:    cfg.SessionID,
		history:      history,
		topK:         cfg.TopK,
		logger:       logger,
	}
}

// Ask runs one full turn. History commits track completed stages:
// a retrieval failure leaves history untouched, a generation failure
// records the user turn but no phantom assistant turn, and a completed
// turn records both.
func (s *chatService) Ask(ctx context.Context, question string) (*domain.ChatResponse, error) {
	if question == "" {
		return nil, domain.ErrInvalidInput
	}

	// Resolve follow-up references against the prior turns before the
	// current question is committed.
	query := s.reformulator.Reformulate(ctx, question, s.history)
	if query != question {
		s.logger.Debug("query reformulated", "original", question, "standalone", query)
	}

	result, err := s.retriever.Retrieve(ctx, query, s.topK)
	if err != nil {
		return nil, err
	}

	contextBlock := s.assembler.Assemble(result)

	// Retrieval succeeded: the user turn is now committed.
	s.history.Append(domain.RoleUser, question)

	var answer string
	if result.Empty() {
		answer = declineResponse
	} else {
		answer, err = s.generator.Generate(ctx, question, contextBlock, s.history)
		if err != nil {
			s.persist(ctx)
			return nil, err
		}
	}

	s.history.Append(domain.RoleAssistant, answer)
	s.persist(ctx)

	return &domain.ChatResponse{
		Answer:     answer,
		Validation: s.validator.Validate(answer),
		Context:    contextBlock,
		Retrieved:  result,
	}, nil
}

// History returns the committed conversation turns in order.
func (s *chatService) History() []domain.Turn {
	return s.history.Messages()
}

// ClearHistory resets the conversation and drops any persisted snapshot.
func (s *chatService) ClearHistory(ctx context.Context) error {
	s.history.Clear()
	if s.store != nil && s.sessionID != "" {
		if err := s.store.DeleteHistory(ctx, s.sessionID); err != nil {
			return err
		}
	}
	return nil
}

// persist snapshots the committed history. Best-effort: a store failure
// never aborts the turn.
func (s *chatService) persist(ctx context.Context) {
	if s.store == nil || s.sessionID == "" {
		return
	}
	if err := s.store.SaveHistory(ctx, s.sessionID, s.history.Messages()); err != nil {
		s.logger.Warn("could not persist session history", "session", s.sessionID, "error", err)
	}
}
