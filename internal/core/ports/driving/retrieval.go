package driving

import (
	"context"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// RetrievalService retrieves relevant catalog products for a query
type RetrievalService interface {
	// Retrieve returns at most topK products ranked by fused relevance.
	// Zero results is a valid outcome meaning nothing matched.
	Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error)
}
