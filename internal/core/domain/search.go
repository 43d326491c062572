package domain

import "time"

// RetrievalMode determines the retrieval strategy
type RetrievalMode string

const (
	RetrievalModeHybrid      RetrievalMode = "hybrid"  // lexical + semantic fused (default)
	RetrievalModeLexicalOnly RetrievalMode = "lexical" // weighted multi-field keyword match
	RetrievalModeSemantic    RetrievalMode = "semantic"
)

// RequiresEmbedding returns true if the given mode needs a query embedding
// when the embedding method is dense. Sparse (learned term expansion)
// queries are expanded inside the backend and need no client-side vector.
func (m RetrievalMode) RequiresEmbedding() bool {
	return m == RetrievalModeHybrid || m == RetrievalModeSemantic
}

// RetrievalMethod identifies which ranking produced a result
type RetrievalMethod string

const (
	MethodLexical  RetrievalMethod = "lexical"
	MethodSemantic RetrievalMethod = "semantic"
	MethodFused    RetrievalMethod = "fused" // RRF over both rankings
)

// RankedProduct is a retrieved product with its relevance score
type RankedProduct struct {
	Product *Product        `json:"product"`
	Score   float64         `json:"score"`
	Method  RetrievalMethod `json:"method"`
}

// RetrievalResult is the ordered outcome of one retrieval request.
// Results are sorted by descending fused score; ties keep input order.
// Zero results is a valid outcome, not an error.
type RetrievalResult struct {
	Query     string           `json:"query"`
	Mode      RetrievalMode    `json:"mode"`
	Results   []*RankedProduct `json:"results"`
	TotalHits int              `json:"total_hits"`
	Took      time.Duration    `json:"took"`
}

// Empty reports whether nothing matched the query.
func (r *RetrievalResult) Empty() bool {
	return r == nil || len(r.Results) == 0
}
