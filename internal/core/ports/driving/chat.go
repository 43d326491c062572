package driving

import (
	"context"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// ChatService handles one conversational session, turn by turn.
// Turns for a session are strictly sequential: no two Ask calls for the
// same session may be in flight concurrently.
type ChatService interface {
	// Ask runs one full turn: reformulate, retrieve, assemble context,
	// generate, validate. History is only updated for completed stages.
	Ask(ctx context.Context, question string) (*domain.ChatResponse, error)

	// History returns the committed conversation turns in order
	History() []domain.Turn

	// ClearHistory resets the conversation
	ClearHistory(ctx context.Context) error
}
