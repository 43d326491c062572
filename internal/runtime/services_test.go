package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven/mocks"
)

func TestServices_CapabilityFlagsTrackRegistration(t *testing.T) {
	config := domain.NewRuntimeConfig(domain.EmbeddingDense)
	services := NewServices(config)

	if config.CanDoSemanticSearch() {
		t.Error("dense mode without an embedder must not allow semantic search")
	}

	services.SetEmbeddingService(mocks.NewMockEmbeddingService())
	if !config.CanDoSemanticSearch() {
		t.Error("registering an embedder should enable semantic search")
	}

	services.SetEmbeddingService(nil)
	if config.CanDoSemanticSearch() {
		t.Error("deregistering the embedder should disable semantic search")
	}
}

func TestServices_SparseModeNeedsNoEmbedder(t *testing.T) {
	config := domain.NewRuntimeConfig(domain.EmbeddingSparse)
	NewServices(config)

	if !config.CanDoSemanticSearch() {
		t.Error("sparse mode delegates embedding to the engine and is always semantic-capable")
	}
}

func TestServices_ValidateAndSetRejectsUnhealthy(t *testing.T) {
	services := NewServices(domain.NewRuntimeConfig(domain.EmbeddingDense))

	embedder := mocks.NewMockEmbeddingService()
	embedder.FailNext(1, errors.New("connection refused"))
	if err := services.ValidateAndSetEmbedding(context.Background(), embedder); err == nil {
		t.Fatal("expected the health check failure to surface")
	}
	if services.EmbeddingService() != nil {
		t.Error("an unhealthy service must not be registered")
	}

	healthy := mocks.NewMockEmbeddingService()
	if err := services.ValidateAndSetEmbedding(context.Background(), healthy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if services.EmbeddingService() == nil {
		t.Error("expected the healthy service to be registered")
	}
}

func TestServices_CloseClearsEverything(t *testing.T) {
	config := domain.NewRuntimeConfig(domain.EmbeddingDense)
	services := NewServices(config)
	services.SetEmbeddingService(mocks.NewMockEmbeddingService())
	services.SetLLMService(mocks.NewMockLLMService())

	if err := services.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if services.EmbeddingService() != nil || services.LLMService() != nil {
		t.Error("expected all services cleared")
	}
	if config.CanDoSemanticSearch() {
		t.Error("capability flags must reset on close")
	}
}
