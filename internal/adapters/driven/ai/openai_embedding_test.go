package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIEmbedding_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedding("", "text-embedding-3-small", "")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewOpenAIEmbedding_DefaultModel(t *testing.T) {
	svc, err := NewOpenAIEmbedding("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	emb := svc.(*OpenAIEmbedding)
	if emb.model != "text-embedding-3-small" {
		t.Errorf("expected default model text-embedding-3-small, got %s", emb.model)
	}
	if emb.baseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %s", emb.baseURL)
	}
}

func TestOpenAIEmbedding_Dimensions(t *testing.T) {
	testCases := []struct {
		model      string
		dimensions int
	}{
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"text-embedding-ada-002", 1536},
		{"unknown-model", 1536}, // defaults to 1536
	}

	for _, tc := range testCases {
		t.Run(tc.model, func(t *testing.T) {
			svc, err := NewOpenAIEmbedding("sk-test", tc.model, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if svc.Dimensions() != tc.dimensions {
				t.Errorf("expected dimensions %d, got %d", tc.dimensions, svc.Dimensions())
			}
		})
	}
}

func TestOpenAIEmbedding_Embed(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		inputs := req.Input.([]interface{})

		resp := map[string]any{"data": []map[string]any{}}
		// Return out of order to exercise index-based reassembly
		for i := len(inputs) - 1; i >= 0; i-- {
			resp["data"] = append(resp["data"].([]map[string]any), map[string]any{
				"index":     i,
				"embedding": []float32{float32(i), float32(i)},
			})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vecs, err := svc.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if vecs[0][0] != 0 || vecs[1][0] != 1 {
		t.Errorf("vectors must be reordered by index, got %v", vecs)
	}
}

func TestOpenAIEmbedding_APIErrorSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.EmbedQuery(context.Background(), "query")
	if err == nil {
		t.Fatal("expected the API error to surface")
	}
}

func TestOpenAIEmbedding_EmptyInput(t *testing.T) {
	svc, err := NewOpenAIEmbedding("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vecs, err := svc.Embed(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("empty input must be a no-op, got %v, %v", vecs, err)
	}
}
