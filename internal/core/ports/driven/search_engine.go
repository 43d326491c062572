package driven

import (
	"context"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// WeightedField names an indexed field with its relative boost in a
// lexical query. Name is weighted highest, then description, then
// category and features.
type WeightedField struct {
	Name  string
	Boost float64
}

// LexicalClause describes a weighted multi-field keyword query.
type LexicalClause struct {
	Query  string
	Fields []WeightedField
	Fuzzy  bool // tolerate minor misspellings
}

// VectorClause describes a semantic sub-query. Exactly one of Vector
// (dense nearest-neighbour) or SparseQuery (learned term expansion,
// expanded by the backend) is set.
type VectorClause struct {
	Vector        []float32
	SparseQuery   string
	K             int
	NumCandidates int
}

// FusionClause requests server-side reciprocal rank fusion over the
// lexical and semantic rankings.
type FusionClause struct {
	RankConstant int
	WindowSize   int
}

// SearchRequest is the query spec sent to the search engine. Clauses
// are optional; a request with a single clause runs that method alone.
type SearchRequest struct {
	Lexical *LexicalClause
	Vector  *VectorClause
	Fusion  *FusionClause
	Size    int
}

// Hit is a single ranked document returned by the engine.
type Hit struct {
	Product *domain.Product
	Score   float64
}

// SearchEngine handles product indexing and querying (Elasticsearch)
type SearchEngine interface {
	// Search executes a query spec and returns ranked hits plus the
	// backend's total hit count
	Search(ctx context.Context, req SearchRequest) ([]Hit, int, error)

	// Index bulk-indexes products into the catalog
	Index(ctx context.Context, products []*domain.Product) error

	// IndexExists reports whether the product index has been provisioned
	IndexExists(ctx context.Context) (bool, error)

	// SupportsNativeFusion reports whether the engine can fuse rankings
	// server-side; when false the retriever fuses client-side
	SupportsNativeFusion() bool

	// HealthCheck verifies the search engine is available
	HealthCheck(ctx context.Context) error
}
