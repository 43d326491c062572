package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/shopchat-core/internal/runtime"
)

func TestLoadFile_SkipsMalformedRecords(t *testing.T) {
	engine := mocks.NewMockSearchEngine()
	services := runtime.NewServices(domain.NewRuntimeConfig(domain.EmbeddingSparse))
	loader := NewLoader(engine, services, nil)

	result, err := loader.LoadFile(context.Background(), filepath.Join("testdata", "products.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Indexed != 3 || result.Skipped != 1 {
		t.Errorf("expected 3 indexed and 1 skipped, got %+v", result)
	}
	if engine.ProductCount() != 3 {
		t.Errorf("expected 3 products in the engine, got %d", engine.ProductCount())
	}
}

func TestLoadFile_PreservesSpecOrder(t *testing.T) {
	engine := mocks.NewMockSearchEngine()
	services := runtime.NewServices(domain.NewRuntimeConfig(domain.EmbeddingSparse))
	loader := NewLoader(engine, services, nil)

	if _, err := loader.LoadFile(context.Background(), filepath.Join("testdata", "products.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := engine.Product("laptop-1")
	if p == nil {
		t.Fatal("expected laptop-1 to be indexed")
	}
	want := []string{"CPU", "RAM", "Storage", "GPU", "Display"}
	if len(p.Specifications) != len(want) {
		t.Fatalf("expected %d specs, got %d", len(want), len(p.Specifications))
	}
	for i, name := range want {
		if p.Specifications[i].Name != name {
			t.Errorf("spec %d: expected %s, got %s", i, name, p.Specifications[i].Name)
		}
	}
}

func TestLoad_DenseModeEmbedsBatches(t *testing.T) {
	engine := mocks.NewMockSearchEngine()
	embedder := mocks.NewMockEmbeddingService()
	services := runtime.NewServices(domain.NewRuntimeConfig(domain.EmbeddingDense))
	services.SetEmbeddingService(embedder)

	loader := NewLoader(engine, services, nil)
	loader.BatchSize = 2

	products := []*domain.Product{
		{ID: "p1", Name: "One", Description: "first"},
		{ID: "p2", Name: "Two", Description: "second"},
		{ID: "p3", Name: "Three", Description: "third"},
	}
	result, err := loader.Load(context.Background(), products)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Indexed != 3 {
		t.Errorf("expected 3 indexed, got %d", result.Indexed)
	}
	if len(embedder.Requests) != 3 {
		t.Errorf("expected every product embedded, got %d requests", len(embedder.Requests))
	}
	for _, p := range products {
		if len(p.Embedding) == 0 {
			t.Errorf("product %s missing its embedding", p.ID)
		}
	}
}

func TestLoad_DenseModeWithoutEmbedderIsLexicalOnly(t *testing.T) {
	engine := mocks.NewMockSearchEngine()
	services := runtime.NewServices(domain.NewRuntimeConfig(domain.EmbeddingDense))
	loader := NewLoader(engine, services, nil)

	result, err := loader.Load(context.Background(), []*domain.Product{{ID: "p1", Name: "One"}})
	if err != nil {
		t.Fatalf("a missing embedder must not block loading: %v", err)
	}
	if result.Indexed != 1 {
		t.Errorf("expected 1 indexed, got %d", result.Indexed)
	}
}

func TestLoad_EmbeddingFailureAborts(t *testing.T) {
	engine := mocks.NewMockSearchEngine()
	embedder := mocks.NewMockEmbeddingService()
	embedder.FailNext(1, errors.New("connection refused"))
	services := runtime.NewServices(domain.NewRuntimeConfig(domain.EmbeddingDense))
	services.SetEmbeddingService(embedder)

	loader := NewLoader(engine, services, nil)
	_, err := loader.Load(context.Background(), []*domain.Product{{ID: "p1", Name: "One"}})
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected embedding failure, got %v", err)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	loader := NewLoader(mocks.NewMockSearchEngine(), nil, nil)
	if _, err := loader.LoadFile(context.Background(), "testdata/absent.json"); err == nil {
		t.Fatal("expected an error for a missing catalog file")
	}
}
