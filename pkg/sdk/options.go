package gamerec

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder      Embedder
	snapshotDir   string
	searchTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the query embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithSnapshotDir loads the snapshot written by gamerec-build from dir on New,
// and enables Reload.
func WithSnapshotDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotDir = dir
	})
}

// WithSearchTimeout bounds each query embedding call. Zero means no deadline (default).
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// QueryOption configures a single Recommend call.
type QueryOption func(*queryConfig)

type queryConfig struct {
	alpha        float64
	topN         int
	semanticTopK int

	minPrice   *float64
	maxPrice   *float64
	genres     []string
	platforms  []Platform
	minQuality *float64
}

func defaultQuery() queryConfig {
	return queryConfig{alpha: DefaultAlpha}
}

// WithAlpha sets the weight of semantic similarity against rating, in [0, 1].
// Values outside the range are clamped. Default 0.5.
func WithAlpha(alpha float64) QueryOption {
	return func(q *queryConfig) {
		q.alpha = alpha
	}
}

// WithTopN sets how many recommendations to return. Default 10.
func WithTopN(n int) QueryOption {
	return func(q *queryConfig) {
		q.topN = n
	}
}

// WithSemanticTopK sets how many nearest neighbors are considered before filtering.
// Default max(50, topN).
func WithSemanticTopK(k int) QueryOption {
	return func(q *queryConfig) {
		q.semanticTopK = k
	}
}

// WithMinPrice drops games cheaper than p.
func WithMinPrice(p float64) QueryOption {
	return func(q *queryConfig) {
		q.minPrice = &p
	}
}

// WithMaxPrice drops games more expensive than p.
func WithMaxPrice(p float64) QueryOption {
	return func(q *queryConfig) {
		q.maxPrice = &p
	}
}

// WithGenres keeps games having at least one of genres. Names match exactly.
func WithGenres(genres ...string) QueryOption {
	return func(q *queryConfig) {
		q.genres = append(q.genres, genres...)
	}
}

// WithPlatforms keeps games supporting all of platforms.
func WithPlatforms(platforms ...Platform) QueryOption {
	return func(q *queryConfig) {
		q.platforms = append(q.platforms, platforms...)
	}
}

// WithMinQuality drops games with a weighted rating below r.
func WithMinQuality(r float64) QueryOption {
	return func(q *queryConfig) {
		q.minQuality = &r
	}
}
