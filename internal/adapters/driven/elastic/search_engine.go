// Package elastic implements the search engine port against
// Elasticsearch 8. Hybrid queries fuse a fuzzy multi_match with either
// a kNN clause (dense) or a sparse_vector clause (ELSER), server-side
// via the rrf retriever when the cluster supports it.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchEngine = (*SearchEngine)(nil)

// SearchEngine implements driven.SearchEngine using Elasticsearch
type SearchEngine struct {
	baseURL    string
	index      string
	httpClient *http.Client

	username string
	password string
	apiKey   string

	sparseField  string
	denseField   string
	inferenceID  string
	nativeFusion bool
}

// Config holds Elasticsearch connection configuration
type Config struct {
	// BaseURL is the Elasticsearch endpoint (e.g., http://localhost:9200)
	BaseURL string

	// Index is the product index name
	Index string

	// Basic auth credentials (ignored when APIKey is set)
	Username string
	Password string

	// APIKey authenticates with an encoded API key
	APIKey string

	// Timeout for HTTP requests
	Timeout time.Duration

	// SparseField is the field holding ELSER term expansions
	SparseField string

	// DenseField is the field holding dense embeddings
	DenseField string

	// InferenceID names the sparse embedding inference endpoint
	InferenceID string

	// NativeFusion enables the server-side rrf retriever (8.14+);
	// older clusters fuse client-side
	NativeFusion bool
}

// DefaultConfig returns sensible defaults for a local cluster
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Index:        "products",
		Timeout:      30 * time.Second,
		SparseField:  "description_sparse",
		DenseField:   "embedding_vector",
		InferenceID:  ".elser-2-elasticsearch",
		NativeFusion: true,
	}
}

// NewSearchEngine creates a new Elasticsearch-backed SearchEngine
func NewSearchEngine(cfg Config) *SearchEngine {
	return &SearchEngine{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		index:        cfg.Index,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		username:     cfg.Username,
		password:     cfg.Password,
		apiKey:       cfg.APIKey,
		sparseField:  cfg.SparseField,
		denseField:   cfg.DenseField,
		inferenceID:  cfg.InferenceID,
		nativeFusion: cfg.NativeFusion,
	}
}

// SupportsNativeFusion reports whether rankings fuse server-side
func (s *SearchEngine) SupportsNativeFusion() bool {
	return s.nativeFusion
}

// Search executes a query spec against the product index
func (s *SearchEngine) Search(ctx context.Context, req driven.SearchRequest) ([]driven.Hit, int, error) {
	body, err := s.buildBody(req)
	if err != nil {
		return nil, 0, err
	}

	url := fmt.Sprintf("%s/%s/_search", s.baseURL, s.index)
	resp, err := s.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("elasticsearch search failed: %s - %s", resp.Status, string(respBody))
	}

	var searchResp esSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, 0, err
	}

	hits := make([]driven.Hit, 0, len(searchResp.Hits.Hits))
	for _, h := range searchResp.Hits.Hits {
		product := h.Source
		if product == nil {
			continue
		}
		hits = append(hits, driven.Hit{Product: product, Score: h.Score})
	}
	return hits, searchResp.Hits.Total.Value, nil
}

// buildBody assembles the request body for the clause combination.
// A fused request uses the rrf retriever; single-clause requests use
// the plain query or knn forms.
func (s *SearchEngine) buildBody(req driven.SearchRequest) ([]byte, error) {
	body := map[string]any{}
	if req.Size > 0 {
		body["size"] = req.Size
	}

	switch {
	case req.Fusion != nil && req.Lexical != nil && req.Vector != nil:
		rrf := map[string]any{
			"retrievers": []any{
				map[string]any{"standard": map[string]any{"query": s.lexicalQuery(req.Lexical)}},
				s.vectorRetriever(req.Vector),
			},
		}
		if req.Fusion.RankConstant > 0 {
			rrf["rank_constant"] = req.Fusion.RankConstant
		}
		if req.Fusion.WindowSize > 0 {
			rrf["rank_window_size"] = req.Fusion.WindowSize
		}
		body["retriever"] = map[string]any{"rrf": rrf}

	case req.Lexical != nil && req.Vector == nil:
		body["query"] = s.lexicalQuery(req.Lexical)

	case req.Vector != nil && req.Lexical == nil:
		if len(req.Vector.Vector) > 0 {
			body["knn"] = s.knnClause(req.Vector)
		} else {
			body["query"] = s.sparseQuery(req.Vector)
		}

	default:
		return nil, fmt.Errorf("%w: search request needs at least one clause", domain.ErrInvalidInput)
	}

	return json.Marshal(body)
}

func (s *SearchEngine) lexicalQuery(c *driven.LexicalClause) map[string]any {
	fields := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		if f.Boost > 0 && f.Boost != 1 {
			fields[i] = fmt.Sprintf("%s^%g", f.Name, f.Boost)
		} else {
			fields[i] = f.Name
		}
	}
	match := map[string]any{
		"query":  c.Query,
		"fields": fields,
	}
	if c.Fuzzy {
		match["fuzziness"] = "AUTO"
	}
	return map[string]any{"multi_match": match}
}

func (s *SearchEngine) vectorRetriever(c *driven.VectorClause) map[string]any {
	if len(c.Vector) > 0 {
		return map[string]any{"knn": s.knnClause(c)}
	}
	return map[string]any{"standard": map[string]any{"query": s.sparseQuery(c)}}
}

func (s *SearchEngine) knnClause(c *driven.VectorClause) map[string]any {
	knn := map[string]any{
		"field":        s.denseField,
		"query_vector": c.Vector,
	}
	if c.K > 0 {
		knn["k"] = c.K
	}
	if c.NumCandidates > 0 {
		knn["num_candidates"] = c.NumCandidates
	}
	return knn
}

func (s *SearchEngine) sparseQuery(c *driven.VectorClause) map[string]any {
	return map[string]any{
		"sparse_vector": map[string]any{
			"field":        s.sparseField,
			"inference_id": s.inferenceID,
			"query":        c.SparseQuery,
		},
	}
}

// Index bulk-indexes products via the _bulk API
func (s *SearchEngine) Index(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		action := map[string]any{"index": map[string]any{"_index": s.index, "_id": p.ID}}
		if err := enc.Encode(action); err != nil {
			return err
		}
		if err := enc.Encode(p); err != nil {
			return err
		}
	}

	url := fmt.Sprintf("%s/_bulk?refresh=wait_for", s.baseURL)
	resp, err := s.do(ctx, http.MethodPost, url, buf.Bytes())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elasticsearch bulk index failed: %s - %s", resp.Status, string(respBody))
	}

	var bulkResp esBulkResponse
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return err
	}
	if bulkResp.Errors {
		for _, item := range bulkResp.Items {
			if item.Index.Error != nil {
				return fmt.Errorf("elasticsearch bulk index failed for %s: %s", item.Index.ID, item.Index.Error.Reason)
			}
		}
		return fmt.Errorf("elasticsearch bulk index reported errors")
	}
	return nil
}

// IndexExists reports whether the product index has been provisioned
func (s *SearchEngine) IndexExists(ctx context.Context) (bool, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, s.index)
	resp, err := s.do(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("elasticsearch index check failed: %s", resp.Status)
	}
}

// HealthCheck verifies the cluster is reachable
func (s *SearchEngine) HealthCheck(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("elasticsearch health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("elasticsearch unhealthy: %s", resp.Status)
	}
	return nil
}

func (s *SearchEngine) do(ctx context.Context, method, url string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case s.apiKey != "":
		req.Header.Set("Authorization", "ApiKey "+s.apiKey)
	case s.username != "":
		req.SetBasicAuth(s.username, s.password)
	}
	return s.httpClient.Do(req)
}

// esSearchResponse represents the subset of the search response we read
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  float64         `json:"_score"`
			Source *domain.Product `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID    string `json:"_id"`
			Error *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"index"`
	} `json:"items"`
}
