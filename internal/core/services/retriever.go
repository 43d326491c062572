package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driving"
	"github.com/custodia-labs/shopchat-core/internal/retry"
	"github.com/custodia-labs/shopchat-core/internal/runtime"
)

// Ensure hybridRetriever implements RetrievalService
var _ driving.RetrievalService = (*hybridRetriever)(nil)

// lexicalFields are the weighted fields for the keyword sub-query:
// name weighted highest, then description, then category and features.
var lexicalFields = []driven.WeightedField{
	{Name: "name", Boost: 3},
	{Name: "description", Boost: 2},
	{Name: "category", Boost: 1},
	{Name: "features", Boost: 1},
}

// RetrieverConfig holds the retrieval tuning read once at startup.
type RetrieverConfig struct {
	TopK          int // default result size
	NumCandidates int // candidate pool for the semantic sub-query
	RankConstant  int // RRF rank constant k
	WindowSize    int // RRF fusion window
}

// hybridRetriever issues combined lexical+semantic queries against the
// search engine and normalizes the fused ranking.
type hybridRetriever struct {
	engine   driven.SearchEngine
	services *runtime.Services
	cfg      RetrieverConfig
	retry    retry.Policy
	logger   *slog.Logger
}

// NewHybridRetriever creates a new RetrievalService.
// The embedding service is accessed dynamically via runtime.Services.
func NewHybridRetriever(
	engine driven.SearchEngine,
	services *runtime.Services,
	cfg RetrieverConfig,
	policy retry.Policy,
	logger *slog.Logger,
) driving.RetrievalService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.NumCandidates <= 0 {
		cfg.NumCandidates = 50
	}
	if cfg.RankConstant <= 0 {
		cfg.RankConstant = 60
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 50
	}
	return &hybridRetriever{
		engine:   engine,
		services: services,
		cfg:      cfg,
		retry:    policy,
		logger:   logger,
	}
}

// Retrieve returns at most topK products ranked by fused relevance.
func (r *hybridRetriever) Retrieve(ctx context.Context, query string, topK int) (*domain.RetrievalResult, error) {
	start := time.Now()

	if topK <= 0 {
		topK = r.cfg.TopK
	}

	mode := r.services.Config().EffectiveRetrievalMode()

	var (
		hits  []driven.Hit
		total int
		err   error
	)
	switch {
	case mode == domain.RetrievalModeLexicalOnly:
		hits, total, err = r.searchLexical(ctx, query, topK)
	case r.engine.SupportsNativeFusion():
		hits, total, err = r.searchFused(ctx, query, topK)
	default:
		hits, total, err = r.searchAndFuseClientSide(ctx, query, topK)
	}
	if err != nil {
		return nil, err
	}

	method := domain.MethodFused
	if mode == domain.RetrievalModeLexicalOnly {
		method = domain.MethodLexical
	}

	results := make([]*domain.RankedProduct, 0, len(hits))
	for _, hit := range hits {
		if hit.Product == nil {
			r.logger.Warn("skipping hit with no document source")
			continue
		}
		if verr := hit.Product.Validate(); verr != nil {
			r.logger.Warn("skipping malformed product", "error", verr)
			continue
		}
		results = append(results, &domain.RankedProduct{
			Product: hit.Product,
			Score:   hit.Score,
			Method:  method,
		})
	}
	if len(results) > topK {
		results = results[:topK]
	}

	return &domain.RetrievalResult{
		Query:     query,
		Mode:      mode,
		Results:   results,
		TotalHits: total,
		Took:      time.Since(start),
	}, nil
}

// searchFused issues one request carrying both clauses and a fusion
// clause; the backend performs RRF server-side.
func (r *hybridRetriever) searchFused(ctx context.Context, query string, topK int) ([]driven.Hit, int, error) {
	vector, err := r.vectorClause(ctx, query, topK)
	if err != nil {
		return nil, 0, err
	}

	req := driven.SearchRequest{
		Lexical: r.lexicalClause(query),
		Vector:  vector,
		Fusion: &driven.FusionClause{
			RankConstant: r.cfg.RankConstant,
			WindowSize:   r.cfg.WindowSize,
		},
		Size: topK,
	}

	hits, total, err := r.search(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}
	return hits, total, nil
}

// searchAndFuseClientSide runs the two sub-queries independently (no
// ordering dependency between them) and fuses the rankings locally.
func (r *hybridRetriever) searchAndFuseClientSide(ctx context.Context, query string, topK int) ([]driven.Hit, int, error) {
	vector, err := r.vectorClause(ctx, query, topK)
	if err != nil {
		return nil, 0, err
	}
	// Fetch a wider window from each method so fusion has enough
	// candidates to reorder.
	window := r.cfg.WindowSize
	if window < topK {
		window = topK
	}

	var (
		wg          sync.WaitGroup
		lexHits     []driven.Hit
		semHits     []driven.Hit
		lexErr      error
		semErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		lexHits, _, lexErr = r.search(ctx, driven.SearchRequest{
			Lexical: r.lexicalClause(query),
			Size:    window,
		})
	}()
	go func() {
		defer wg.Done()
		semHits, _, semErr = r.search(ctx, driven.SearchRequest{
			Vector: vector,
			Size:   window,
		})
	}()
	wg.Wait()

	if lexErr != nil {
		return nil, 0, fmt.Errorf("%w: lexical query: %w", domain.ErrRetrievalFailed, lexErr)
	}
	if semErr != nil {
		return nil, 0, fmt.Errorf("%w: semantic query: %w", domain.ErrRetrievalFailed, semErr)
	}

	fused := fuseRRF([][]driven.Hit{lexHits, semHits}, r.cfg.RankConstant)
	total := len(fused)

	hits := make([]driven.Hit, 0, len(fused))
	for _, rp := range fused {
		hits = append(hits, driven.Hit{Product: rp.Product, Score: rp.Score})
	}
	return hits, total, nil
}

// searchLexical runs the keyword sub-query alone.
func (r *hybridRetriever) searchLexical(ctx context.Context, query string, topK int) ([]driven.Hit, int, error) {
	hits, total, err := r.search(ctx, driven.SearchRequest{
		Lexical: r.lexicalClause(query),
		Size:    topK,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}
	return hits, total, nil
}

// search executes one engine request under the shared retry policy.
func (r *hybridRetriever) search(ctx context.Context, req driven.SearchRequest) ([]driven.Hit, int, error) {
	var (
		hits  []driven.Hit
		total int
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		hits, total, err = r.engine.Search(ctx, req)
		return err
	})
	return hits, total, err
}

func (r *hybridRetriever) lexicalClause(query string) *driven.LexicalClause {
	return &driven.LexicalClause{
		Query:  query,
		Fields: lexicalFields,
		Fuzzy:  true,
	}
}

// vectorClause builds the semantic sub-query. In sparse mode the query
// text is expanded by the backend; in dense mode the configured
// embedding provider produces the vector, and embedding failure after
// retries surfaces as the cause of a retrieval failure.
func (r *hybridRetriever) vectorClause(ctx context.Context, query string, topK int) (*driven.VectorClause, error) {
	clause := &driven.VectorClause{
		K:             topK,
		NumCandidates: r.cfg.NumCandidates,
	}

	if r.services.Config().EmbeddingMethod == domain.EmbeddingSparse {
		clause.SparseQuery = query
		return clause, nil
	}

	embedder := r.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("%w: %w: no embedding service configured", domain.ErrRetrievalFailed, domain.ErrEmbeddingFailed)
	}

	var vector []float32
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		vector, err = embedder.EmbedQuery(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", domain.ErrRetrievalFailed, domain.ErrEmbeddingFailed, err)
	}

	clause.Vector = vector
	return clause, nil
}
