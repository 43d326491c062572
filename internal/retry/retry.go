// Package retry provides the single retry policy applied to every
// external collaborator call (search engine, embedding, LLM).
package retry

import (
	"context"
	"time"
)

// Policy bounds retries of transient failures with exponential backoff.
// A timeout is treated like any other transient failure; context
// cancellation stops retrying immediately.
type Policy struct {
	// MaxAttempts is the total number of tries (first call included)
	MaxAttempts int

	// BaseDelay is the wait before the first retry; it doubles each
	// subsequent retry
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth (0 means uncapped)
	MaxDelay time.Duration
}

// DefaultPolicy matches the configured defaults: 3 attempts starting
// at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Do runs op until it succeeds, attempts are exhausted, or the context
// is cancelled. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
