package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/fusion"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	domrec "github.com/kailas-cloud/gamerec/internal/domain/recommend"
	"github.com/kailas-cloud/gamerec/internal/logger"
	"github.com/kailas-cloud/gamerec/internal/metrics"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
)

// Service runs the hybrid pipeline: similarity window, hard filters, score fusion.
type Service struct {
	snapshots SnapshotSource
	search    Searcher
	logger    *zap.Logger
}

// New creates a recommendation service.
func New(snapshots SnapshotSource, search Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{snapshots: snapshots, search: search, logger: logger}
}

// Recommend returns at most req.TopN() results ranked by fused score.
// The semantic window is fixed at req.SemanticTopK(); when filters reject most of it,
// fewer than TopN results come back.
func (s *Service) Recommend(ctx context.Context, req *domrec.Request) ([]fusion.Result, error) {
	start := time.Now()
	results, err := s.recommend(ctx, req)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	status := statusLabel(err)
	metrics.RecommendRequestsTotal.WithLabelValues(status).Inc()
	if status == "error" {
		s.logger.Error("recommend failed", zap.Error(err))
	}
	return results, err
}

func (s *Service) recommend(ctx context.Context, req *domrec.Request) ([]fusion.Result, error) {
	// One snapshot for the whole request; a concurrent reload does not affect it.
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, fmt.Errorf("current snapshot: %w", err)
	}

	cands, err := s.search.Search(ctx, snap.Index(), req.Query(), req.SemanticTopK())
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	filtered, err := Filter(cands, req.Spec(), snap.Catalog())
	if err != nil {
		return nil, fmt.Errorf("apply filters: %w", err)
	}

	results, err := Fuse(filtered, snap.Catalog(), req.Alpha())
	if err != nil {
		return nil, fmt.Errorf("fuse scores: %w", err)
	}
	if len(results) > req.TopN() {
		results = results[:req.TopN()]
	}

	metrics.RecommendCandidates.WithLabelValues("searched").Observe(float64(len(cands)))
	metrics.RecommendCandidates.WithLabelValues("filtered").Observe(float64(len(filtered)))
	metrics.RecommendCandidates.WithLabelValues("returned").Observe(float64(len(results)))

	logger.FromContext(ctx).Debug("recommend",
		zap.String("snapshot", snap.Manifest().Version),
		zap.Int("candidates", len(cands)),
		zap.Int("filtered", len(filtered)),
		zap.Int("returned", len(results)),
		zap.Float64("alpha", req.Alpha()),
	)
	return results, nil
}

// GenreVocabulary returns the sorted genres of the current catalog, narrowed to prefix when non-empty.
func (s *Service) GenreVocabulary(_ context.Context, prefix string) ([]string, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return nil, fmt.Errorf("current snapshot: %w", err)
	}
	return snap.Catalog().GenresWithPrefix(prefix), nil
}

// Item returns the catalog row at position in the current snapshot.
func (s *Service) Item(_ context.Context, position int) (item.Item, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return item.Item{}, fmt.Errorf("current snapshot: %w", err)
	}
	it, err := snap.Catalog().At(position)
	if err != nil {
		return item.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Manifest describes the snapshot currently served.
func (s *Service) Manifest(_ context.Context) (snapshot.Manifest, error) {
	snap, err := s.snapshots.Current()
	if err != nil {
		return snapshot.Manifest{}, fmt.Errorf("current snapshot: %w", err)
	}
	return snap.Manifest(), nil
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, domain.ErrNotBuilt):
		return "not_ready"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "embedding_unavailable"
	default:
		return "error"
	}
}
