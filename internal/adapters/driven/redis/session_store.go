// Package redis implements the session store port. Conversation
// snapshots expire via Redis TTL so abandoned sessions clean themselves
// up.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const historyPrefix = "chat:history:"

// DefaultTTL bounds how long an idle conversation survives.
const DefaultTTL = 24 * time.Hour

// SessionStore implements driven.SessionStore using Redis
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a new Redis-backed SessionStore.
// A non-positive ttl falls back to DefaultTTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// SaveHistory stores a snapshot of a session's turns, refreshing the TTL
func (s *SessionStore) SaveHistory(ctx context.Context, sessionID string, turns []domain.Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := s.client.Set(ctx, historyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// LoadHistory retrieves a session's turns
func (s *SessionStore) LoadHistory(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	data, err := s.client.Get(ctx, historyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return turns, nil
}

// DeleteHistory removes a session's snapshot
func (s *SessionStore) DeleteHistory(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, historyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}
