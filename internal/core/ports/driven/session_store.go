package driven

import (
	"context"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// SessionStore persists conversation history between process runs.
// Persistence is best-effort: the chat service works without a store,
// and store failures never abort a turn.
type SessionStore interface {
	// SaveHistory stores a snapshot of a session's turns
	SaveHistory(ctx context.Context, sessionID string, turns []domain.Turn) error

	// LoadHistory retrieves a session's turns.
	// Returns domain.ErrNotFound if no snapshot exists.
	LoadHistory(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// DeleteHistory removes a session's snapshot
	DeleteHistory(ctx context.Context, sessionID string) error
}
