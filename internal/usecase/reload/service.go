package reload

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	"github.com/kailas-cloud/gamerec/internal/metrics"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
)

// Service builds snapshots and publishes them. Writers are serialized;
// readers are never blocked and keep whatever snapshot they already hold.
type Service struct {
	mu     sync.Mutex
	store  Store
	pub    Publisher
	logger *zap.Logger

	// dimension, when positive, is the only vector width a snapshot may have.
	dimension int
}

// Option configures a Service.
type Option func(*Service)

// WithDimension rejects snapshots whose vectors are not d wide.
// Queries are embedded at d, so such a snapshot could never be searched.
func WithDimension(d int) Option {
	return func(s *Service) {
		s.dimension = d
	}
}

// New creates a reload service. store may be nil when only Load is used.
func New(store Store, pub Publisher, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, pub: pub, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load builds a snapshot from vectors and items and publishes it.
// On failure the previously published snapshot stays in place.
func (s *Service) Load(
	ctx context.Context, vectors [][]float32, items []item.Item, m snapshot.Manifest,
) (snapshot.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, vectors, items, m)
}

// Reload reads the store and publishes what it holds.
func (s *Service) Reload(ctx context.Context) (snapshot.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return snapshot.Manifest{}, fmt.Errorf("no snapshot store configured: %w", domain.ErrReloadFailed)
	}
	items, vectors, m, err := s.store.Load(ctx)
	if err != nil {
		metrics.SnapshotReloadsTotal.WithLabelValues("error").Inc()
		s.logger.Error("snapshot read failed", zap.Error(err))
		return snapshot.Manifest{}, fmt.Errorf("read snapshot: %w: %w", domain.ErrReloadFailed, err)
	}
	return s.load(ctx, vectors, items, m)
}

func (s *Service) load(
	ctx context.Context, vectors [][]float32, items []item.Item, m snapshot.Manifest,
) (snapshot.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Manifest{}, fmt.Errorf("load snapshot: %w", err)
	}

	snap, err := snapshot.Build(vectors, items, m)
	if err != nil {
		metrics.SnapshotReloadsTotal.WithLabelValues("error").Inc()
		s.logger.Error("snapshot build failed", zap.Error(err))
		return snapshot.Manifest{}, fmt.Errorf("build snapshot: %w: %w", domain.ErrReloadFailed, err)
	}
	if s.dimension > 0 && snap.Index().Dimension() != s.dimension {
		metrics.SnapshotReloadsTotal.WithLabelValues("error").Inc()
		s.logger.Error("snapshot dimension mismatch",
			zap.Int("snapshot", snap.Index().Dimension()),
			zap.Int("expected", s.dimension),
		)
		return snapshot.Manifest{}, fmt.Errorf("snapshot has %d dims, queries have %d: %w: %w",
			snap.Index().Dimension(), s.dimension, domain.ErrReloadFailed, domain.ErrDimensionMismatch)
	}

	prev := s.pub.Publish(snap)
	metrics.SnapshotReloadsTotal.WithLabelValues("ok").Inc()
	metrics.SnapshotItems.Set(float64(snap.Catalog().Count()))

	fields := []zap.Field{
		zap.String("version", snap.Manifest().Version),
		zap.String("model", snap.Manifest().Model),
		zap.Int("items", snap.Catalog().Count()),
		zap.Int("dimension", snap.Index().Dimension()),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_version", prev.Manifest().Version))
	}
	s.logger.Info("snapshot published", fields...)
	return snap.Manifest(), nil
}
