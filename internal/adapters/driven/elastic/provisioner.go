package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

// Provisioner creates and tears down the product index. The mapping
// depends on the embedding method: dense mode maps a dense_vector
// field, sparse mode maps a sparse_vector field and requires an
// inference endpoint for the expansion model.
type Provisioner struct {
	engine *SearchEngine

	// EmbeddingDims sizes the dense_vector mapping (dense mode only)
	EmbeddingDims int
}

// NewProvisioner creates a Provisioner sharing the engine's connection
func NewProvisioner(engine *SearchEngine, embeddingDims int) *Provisioner {
	return &Provisioner{engine: engine, EmbeddingDims: embeddingDims}
}

// Provision creates the product index if it does not exist. Returns
// true when a new index was created.
func (p *Provisioner) Provision(ctx context.Context, method domain.EmbeddingMethod) (bool, error) {
	exists, err := p.engine.IndexExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if method == domain.EmbeddingSparse {
		if err := p.ensureInferenceEndpoint(ctx); err != nil {
			return false, err
		}
	}

	mapping, err := p.buildMapping(method)
	if err != nil {
		return false, err
	}

	url := fmt.Sprintf("%s/%s", p.engine.baseURL, p.engine.index)
	resp, err := p.engine.do(ctx, http.MethodPut, url, mapping)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("index creation failed: %s - %s", resp.Status, string(body))
	}
	return true, nil
}

// Teardown deletes the product index. A missing index is not an error.
func (p *Provisioner) Teardown(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s", p.engine.baseURL, p.engine.index)
	resp, err := p.engine.do(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("index deletion failed: %s - %s", resp.Status, string(body))
	}
	return nil
}

func (p *Provisioner) buildMapping(method domain.EmbeddingMethod) ([]byte, error) {
	properties := map[string]any{
		"id":       map[string]any{"type": "keyword"},
		"name":     map[string]any{"type": "text"},
		"category": map[string]any{"type": "keyword"},
		"price":    map[string]any{"type": "float"},
		"description": map[string]any{
			"type": "text",
		},
		"specifications": map[string]any{"type": "object", "enabled": true},
		"features":       map[string]any{"type": "text"},
		"reviews": map[string]any{
			"properties": map[string]any{
				"rating":  map[string]any{"type": "float"},
				"count":   map[string]any{"type": "integer"},
				"summary": map[string]any{"type": "text"},
			},
		},
	}

	switch method {
	case domain.EmbeddingDense:
		dims := p.EmbeddingDims
		if dims <= 0 {
			return nil, fmt.Errorf("%w: dense mapping needs embedding dimensions", domain.ErrInvalidInput)
		}
		properties[p.engine.denseField] = map[string]any{
			"type":       "dense_vector",
			"dims":       dims,
			"index":      true,
			"similarity": "cosine",
		}
	case domain.EmbeddingSparse:
		properties[p.engine.sparseField] = map[string]any{
			"type":         "semantic_text",
			"inference_id": p.engine.inferenceID,
		}
	default:
		return nil, fmt.Errorf("%w: unknown embedding method %q", domain.ErrInvalidInput, method)
	}

	return json.Marshal(map[string]any{
		"mappings": map[string]any{"properties": properties},
	})
}

// ensureInferenceEndpoint creates the sparse embedding endpoint if it
// is missing. Built-in endpoints (leading dot) always exist.
func (p *Provisioner) ensureInferenceEndpoint(ctx context.Context) error {
	id := p.engine.inferenceID
	if len(id) > 0 && id[0] == '.' {
		return nil
	}

	checkURL := fmt.Sprintf("%s/_inference/sparse_embedding/%s", p.engine.baseURL, id)
	resp, err := p.engine.do(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"service": "elasticsearch",
		"service_settings": map[string]any{
			"model_id":    ".elser_model_2",
			"num_threads": 1,
			"adaptive_allocations": map[string]any{
				"enabled": true,
			},
		},
	})
	if err != nil {
		return err
	}

	resp, err = p.engine.do(ctx, http.MethodPut, checkURL, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("inference endpoint creation failed: %s - %s", resp.Status, string(respBody))
	}

	// Model deployment can lag behind endpoint creation; callers index
	// with refresh=wait_for so a short settle is enough here.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Second):
	}
	return nil
}
