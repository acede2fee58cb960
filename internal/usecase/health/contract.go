package health

import "context"

// CachePinger checks embedding cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// SnapshotReadiness reports whether a snapshot has been published.
type SnapshotReadiness interface {
	Ready() bool
}
