// Package embedchain assembles the embedding decorator chain shared by the server and the build tool.
package embedchain

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/config"
	"github.com/kailas-cloud/gamerec/internal/db"
	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/metrics"
	"github.com/kailas-cloud/gamerec/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/gamerec/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/gamerec/internal/usecase/embedding"
)

// Embedder is the full capability set of an assembled chain.
type Embedder interface {
	domain.Embedder
	domain.BatchEmbedder
	domain.HealthChecker
}

// Options selects the provider, model and optional cache of a chain.
type Options struct {
	ProviderName string
	Provider     config.ProviderConfig
	Vectorizer   config.VectorizerConfig
	Instruction  string
	// Cache is optional; nil disables embedding caching.
	Cache    db.KVStore
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Build assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
func Build(o Options) Embedder {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     o.Provider.APIKey,
		BaseURL:    o.Provider.BaseURL,
		Model:      o.Vectorizer.Model,
		Dimensions: o.Vectorizer.Dimensions,
		Provider:   o.ProviderName,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if o.Cache != nil {
		embedder = embcache.New(base, o.Cache, o.Vectorizer.Model, o.CacheTTL, metrics.EmbeddingCacheTotal, logger)
	}

	opts := []embeddinguc.Option{embeddinguc.WithMaxBatchSize(o.Vectorizer.MaxBatchSize)}
	if o.Vectorizer.Dimensions > 0 {
		opts = append(opts, embeddinguc.WithDimension(o.Vectorizer.Dimensions))
	}
	instrumented := embeddinguc.NewInstrumentedEmbedder(
		embedder, o.ProviderName, o.Vectorizer.Model, logger, opts...,
	)

	// Instruction prefix (outermost, so the cache key includes the instruction)
	if o.Instruction != "" {
		return domain.NewInstructionEmbedder(instrumented, o.Instruction)
	}
	return instrumented
}

// HealthChecker adapts an embedder to a health probe; embedders without one always pass.
type HealthChecker struct {
	embedder domain.Embedder
}

// NewHealthChecker wraps embedder.
func NewHealthChecker(embedder domain.Embedder) *HealthChecker {
	return &HealthChecker{embedder: embedder}
}

// HealthCheck forwards to the embedder when it supports health checks.
func (h *HealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent adapter
	}
	return nil
}
