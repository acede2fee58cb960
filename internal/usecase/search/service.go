package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/candidate"
	"github.com/kailas-cloud/gamerec/internal/vectorindex"
)

// Service turns a text query into a ranked similarity window.
type Service struct {
	embed   Embedder
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a similarity search service. A zero timeout disables the per-query deadline.
func New(embed Embedder, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, timeout: timeout, logger: logger}
}

// Search embeds query and returns the topK nearest positions of idx.
// Any embedding failure, including an empty vector, is reported as ErrEmbeddingUnavailable.
func (s *Service) Search(
	ctx context.Context, idx vectorindex.Searcher, query string, topK int,
) (candidate.Set, error) {
	if idx == nil || idx.Len() == 0 {
		return nil, domain.ErrNotBuilt
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d: %w", topK, domain.ErrInvalidRequest)
	}

	vec, err := s.vectorize(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vec) != idx.Dimension() {
		return nil, fmt.Errorf("query embedding has %d dims, index has %d: %w",
			len(vec), idx.Dimension(), domain.ErrDimensionMismatch)
	}

	cands, err := idx.Search(vectorindex.Normalized(vec), min(topK, idx.Len()))
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return cands, nil
}

func (s *Service) vectorize(ctx context.Context, query string) ([]float32, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed", zap.Error(err))
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(res.Embedding) == 0 {
		return nil, fmt.Errorf("vectorize query: empty vector: %w", domain.ErrEmbeddingUnavailable)
	}
	return res.Embedding, nil
}
