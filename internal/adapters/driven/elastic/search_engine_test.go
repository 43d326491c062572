package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
)

// capture records the last request the fake cluster received.
type capture struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

func newFakeCluster(t *testing.T, response string) (*capture, *SearchEngine) {
	t.Helper()
	rec := &capture{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return rec, NewSearchEngine(DefaultConfig(server.URL))
}

const emptySearchResponse = `{"hits":{"total":{"value":0},"hits":[]}}`

func decodeBody(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("request body is not JSON: %v\n%s", err, data)
	}
	return body
}

func TestSearch_NativeFusedRequest(t *testing.T) {
	rec, engine := newFakeCluster(t, emptySearchResponse)

	_, _, err := engine.Search(context.Background(), driven.SearchRequest{
		Lexical: &driven.LexicalClause{
			Query: "laptop",
			Fields: []driven.WeightedField{
				{Name: "name", Boost: 3},
				{Name: "description", Boost: 2},
				{Name: "category", Boost: 1},
			},
			Fuzzy: true,
		},
		Vector: &driven.VectorClause{SparseQuery: "laptop", K: 10, NumCandidates: 50},
		Fusion: &driven.FusionClause{RankConstant: 60, WindowSize: 50},
		Size:   5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/products/_search" {
		t.Errorf("unexpected path %s", rec.path)
	}

	body := decodeBody(t, rec.body)
	rrf, ok := body["retriever"].(map[string]any)["rrf"].(map[string]any)
	if !ok {
		t.Fatalf("expected an rrf retriever, got %s", rec.body)
	}
	if rrf["rank_constant"] != float64(60) || rrf["rank_window_size"] != float64(50) {
		t.Errorf("unexpected fusion parameters %v", rrf)
	}
	retrievers := rrf["retrievers"].([]any)
	if len(retrievers) != 2 {
		t.Fatalf("expected 2 sub-retrievers, got %d", len(retrievers))
	}

	raw := string(rec.body)
	if !strings.Contains(raw, `"name^3"`) || !strings.Contains(raw, `"description^2"`) {
		t.Errorf("expected boosted field syntax in %s", raw)
	}
	if !strings.Contains(raw, `"category"`) || strings.Contains(raw, `"category^1"`) {
		t.Errorf("unit boosts must not be rendered: %s", raw)
	}
	if !strings.Contains(raw, `"fuzziness":"AUTO"`) {
		t.Errorf("expected fuzzy matching in %s", raw)
	}
	if !strings.Contains(raw, `"sparse_vector"`) {
		t.Errorf("expected a sparse_vector sub-query in %s", raw)
	}
}

func TestSearch_LexicalOnlyRequest(t *testing.T) {
	rec, engine := newFakeCluster(t, emptySearchResponse)

	_, _, err := engine.Search(context.Background(), driven.SearchRequest{
		Lexical: &driven.LexicalClause{Query: "laptop", Fields: []driven.WeightedField{{Name: "name", Boost: 3}}},
		Size:    5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := decodeBody(t, rec.body)
	if _, ok := body["retriever"]; ok {
		t.Error("a single-clause request must not use the rrf retriever")
	}
	if _, ok := body["query"].(map[string]any)["multi_match"]; !ok {
		t.Errorf("expected a multi_match query, got %s", rec.body)
	}
}

func TestSearch_DenseVectorRequest(t *testing.T) {
	rec, engine := newFakeCluster(t, emptySearchResponse)

	_, _, err := engine.Search(context.Background(), driven.SearchRequest{
		Vector: &driven.VectorClause{Vector: []float32{0.1, 0.2}, K: 10, NumCandidates: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := decodeBody(t, rec.body)
	knn, ok := body["knn"].(map[string]any)
	if !ok {
		t.Fatalf("expected a knn clause, got %s", rec.body)
	}
	if knn["field"] != "embedding_vector" || knn["k"] != float64(10) || knn["num_candidates"] != float64(100) {
		t.Errorf("unexpected knn clause %v", knn)
	}
}

func TestSearch_NoClausesRejected(t *testing.T) {
	_, engine := newFakeCluster(t, emptySearchResponse)

	_, _, err := engine.Search(context.Background(), driven.SearchRequest{Size: 5})
	if err == nil {
		t.Fatal("expected an error for an empty query spec")
	}
}

func TestSearch_ParsesHits(t *testing.T) {
	response := `{"hits":{"total":{"value":2},"hits":[
		{"_score":0.9,"_source":{"id":"laptop-1","name":"ProBook Creator 16","price":1899.00}},
		{"_score":0.4,"_source":{"id":"laptop-2","name":"AeroLite 13","price":999.00}}
	]}}`
	_, engine := newFakeCluster(t, response)

	hits, total, err := engine.Search(context.Background(), driven.SearchRequest{
		Lexical: &driven.LexicalClause{Query: "laptop", Fields: []driven.WeightedField{{Name: "name"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d (total %d)", len(hits), total)
	}
	if hits[0].Product.Name != "ProBook Creator 16" || hits[0].Score != 0.9 {
		t.Errorf("unexpected first hit %+v", hits[0])
	}
}

func TestSearch_ErrorStatusSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"parse failure"}`, http.StatusBadRequest)
	}))
	defer server.Close()
	engine := NewSearchEngine(DefaultConfig(server.URL))

	_, _, err := engine.Search(context.Background(), driven.SearchRequest{
		Lexical: &driven.LexicalClause{Query: "laptop", Fields: []driven.WeightedField{{Name: "name"}}},
	})
	if err == nil || !strings.Contains(err.Error(), "parse failure") {
		t.Fatalf("expected the backend error detail, got %v", err)
	}
}

func TestIndex_BulkPayload(t *testing.T) {
	rec, engine := newFakeCluster(t, `{"errors":false,"items":[]}`)

	err := engine.Index(context.Background(), []*domain.Product{
		{ID: "laptop-1", Name: "ProBook Creator 16", Price: 1899.00},
		{ID: "laptop-2", Name: "AeroLite 13", Price: 999.00},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.path != "/_bulk" {
		t.Errorf("unexpected path %s", rec.path)
	}

	lines := strings.Split(strings.TrimSpace(string(rec.body)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 NDJSON lines, got %d", len(lines))
	}
	var action map[string]map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &action); err != nil {
		t.Fatalf("bad action line: %v", err)
	}
	if action["index"]["_index"] != "products" || action["index"]["_id"] != "laptop-1" {
		t.Errorf("unexpected action %v", action)
	}
}

func TestIndex_ItemErrorSurfaced(t *testing.T) {
	response := `{"errors":true,"items":[{"index":{"_id":"laptop-1","error":{"reason":"mapper_parsing_exception"}}}]}`
	_, engine := newFakeCluster(t, response)

	err := engine.Index(context.Background(), []*domain.Product{{ID: "laptop-1", Name: "ProBook"}})
	if err == nil || !strings.Contains(err.Error(), "mapper_parsing_exception") {
		t.Fatalf("expected the item error detail, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultConfig(server.URL)
	exists, err := NewSearchEngine(cfg).IndexExists(context.Background())
	if err != nil || !exists {
		t.Errorf("expected index to exist, got %v, %v", exists, err)
	}

	cfg.Index = "missing"
	exists, err = NewSearchEngine(cfg).IndexExists(context.Background())
	if err != nil || exists {
		t.Errorf("expected index to be absent, got %v, %v", exists, err)
	}
}

func TestAuthHeaders(t *testing.T) {
	rec, engine := newFakeCluster(t, emptySearchResponse)
	engine.apiKey = "encoded-key"

	if err := engine.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.header.Get("Authorization"); got != "ApiKey encoded-key" {
		t.Errorf("unexpected auth header %q", got)
	}

	engine.apiKey = ""
	engine.username = "elastic"
	engine.password = "changeme"
	if err := engine.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user, pass, ok := parseBasicAuth(rec.header.Get("Authorization")); !ok || user != "elastic" || pass != "changeme" {
		t.Errorf("unexpected basic auth header %q", rec.header.Get("Authorization"))
	}
}

func parseBasicAuth(header string) (string, string, bool) {
	r := &http.Request{Header: http.Header{"Authorization": []string{header}}}
	return r.BasicAuth()
}
