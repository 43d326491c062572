// Package catalog loads product data into the search engine.
// Malformed products are skipped and logged, never abort the load.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/shopchat-core/internal/runtime"
)

const defaultBatchSize = 50

// Loader validates, embeds (dense mode) and bulk-indexes products.
type Loader struct {
	engine   driven.SearchEngine
	services *runtime.Services

	// BatchSize bounds embedding and bulk request sizes
	BatchSize int

	// ShowProgress renders a terminal progress bar during the load
	ShowProgress bool

	logger *slog.Logger
}

// Result summarises a completed load.
type Result struct {
	Indexed int
	Skipped int
}

// NewLoader creates a catalog loader.
func NewLoader(engine driven.SearchEngine, services *runtime.Services, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		engine:    engine,
		services:  services,
		BatchSize: defaultBatchSize,
		logger:    logger,
	}
}

// LoadFile reads a JSON array of products from path and indexes it.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	return l.Load(ctx, products)
}

// Load validates and indexes the products in batches. In dense mode
// each batch is embedded before indexing; sparse expansion happens
// engine-side at ingest.
func (l *Loader) Load(ctx context.Context, products []*domain.Product) (*Result, error) {
	result := &Result{}

	valid := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			l.logger.Warn("skipping malformed product", "error", err)
			result.Skipped++
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return result, nil
	}

	var bar *progressbar.ProgressBar
	if l.ShowProgress {
		bar = progressbar.NewOptions(len(valid),
			progressbar.OptionSetDescription("Indexing products"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
		)
	}

	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	for start := 0; start < len(valid); start += batchSize {
		end := start + batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		if err := l.embedBatch(ctx, batch); err != nil {
			return result, err
		}
		if err := l.engine.Index(ctx, batch); err != nil {
			return result, fmt.Errorf("failed to index batch: %w", err)
		}

		result.Indexed += len(batch)
		if bar != nil {
			_ = bar.Set(result.Indexed)
		}
	}

	return result, nil
}

// embedBatch populates dense embeddings when the configured method
// needs them. Without an embedding service the load proceeds
// lexical-only.
func (l *Loader) embedBatch(ctx context.Context, batch []*domain.Product) error {
	if l.services == nil || l.services.Config().EmbeddingMethod != domain.EmbeddingDense {
		return nil
	}
	embedder := l.services.EmbeddingService()
	if embedder == nil {
		return nil
	}

	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.SearchText()
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}
	for i, v := range vectors {
		if i < len(batch) {
			batch[i].Embedding = v
		}
	}
	return nil
}
