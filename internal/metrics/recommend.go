package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Recommendation and snapshot Prometheus metrics.
var (
	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_requests_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"status"},
	)

	RecommendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "End-to-end recommendation latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// RecommendCandidates tracks pipeline stage sizes: "searched", "filtered", "returned".
	RecommendCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_candidates",
			Help:      "Number of candidates at each recommendation stage",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"stage"},
	)

	SnapshotItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_items",
			Help:      "Number of items in the published snapshot",
		},
	)

	SnapshotReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reloads_total",
			Help:      "Snapshot loads by outcome",
		},
		[]string{"status"},
	)
)

var recMetricsOnce sync.Once

// RegisterRecommendMetrics registers recommendation and snapshot metrics. Safe to call more than once.
func RegisterRecommendMetrics() {
	recMetricsOnce.Do(func() {
		prometheus.MustRegister(
			RecommendRequestsTotal,
			RecommendDuration,
			RecommendCandidates,
			SnapshotItems,
			SnapshotReloadsTotal,
		)
	})
}
