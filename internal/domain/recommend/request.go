package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/filter"
)

// Recommendation parameter limits and defaults.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength      = 4096
	DefaultAlpha        = 0.5
	DefaultTopN         = 10
	DefaultSemanticTopK = 50
	MaxTopN             = 100
	MaxSemanticTopK     = 1000
)

// Request is a validated recommendation query.
type Request struct {
	query        string
	spec         filter.Spec
	alpha        float64
	topN         int
	semanticTopK int
}

// New validates and normalizes recommendation parameters.
// Zero topN and semanticTopK select defaults; semanticTopK defaults to at least topN.
// Alpha is kept as given; fusion clamps it into [0, 1].
func New(query string, spec filter.Spec, alpha float64, topN, semanticTopK int) (Request, error) {
	if strings.TrimSpace(query) == "" {
		return Request{}, fmt.Errorf("query is required: %w", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d bytes): %w", MaxQueryLength, domain.ErrInvalidRequest)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return Request{}, fmt.Errorf("alpha must be a finite number: %w", domain.ErrInvalidRequest)
	}

	if topN == 0 {
		topN = DefaultTopN
	}
	if topN < 0 || topN > MaxTopN {
		return Request{}, fmt.Errorf("top_n must be between 1 and %d, got %d: %w", MaxTopN, topN, domain.ErrInvalidRequest)
	}

	if semanticTopK == 0 {
		semanticTopK = max(DefaultSemanticTopK, topN)
	}
	if semanticTopK < topN {
		return Request{}, fmt.Errorf("semantic_top_k (%d) must be >= top_n (%d): %w", semanticTopK, topN, domain.ErrInvalidRequest)
	}
	if semanticTopK > MaxSemanticTopK {
		return Request{}, fmt.Errorf("semantic_top_k must be at most %d, got %d: %w", MaxSemanticTopK, semanticTopK, domain.ErrInvalidRequest)
	}

	return Request{
		query:        query,
		spec:         spec,
		alpha:        alpha,
		topN:         topN,
		semanticTopK: semanticTopK,
	}, nil
}

// Query returns the natural-language query.
func (r *Request) Query() string { return r.query }

// Spec returns the hard filters.
func (r *Request) Spec() filter.Spec { return r.spec }

// Alpha returns the semantic weight as requested.
func (r *Request) Alpha() float64 { return r.alpha }

// TopN returns the maximum number of results.
func (r *Request) TopN() int { return r.topN }

// SemanticTopK returns the size of the similarity window searched before filtering.
func (r *Request) SemanticTopK() int { return r.semanticTopK }
