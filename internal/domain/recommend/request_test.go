package recommend

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("space survival", filter.Spec{}, 0.5, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopN() != DefaultTopN {
		t.Errorf("expected topN=%d, got %d", DefaultTopN, r.TopN())
	}
	if r.SemanticTopK() != DefaultSemanticTopK {
		t.Errorf("expected semanticTopK=%d, got %d", DefaultSemanticTopK, r.SemanticTopK())
	}
}

func TestNew_SemanticTopKDefaultCoversTopN(t *testing.T) {
	r, err := New("q", filter.Spec{}, 0.5, 80, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.SemanticTopK() != 80 {
		t.Errorf("expected semanticTopK=80, got %d", r.SemanticTopK())
	}
}

func TestNew_KeepsOutOfRangeAlpha(t *testing.T) {
	r, err := New("q", filter.Spec{}, 1.3, 5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Alpha() != 1.3 {
		t.Errorf("alpha should be clamped by fusion, not here; got %v", r.Alpha())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		alpha        float64
		topN, window int
	}{
		{"blank query", "  ", 0.5, 10, 50},
		{"long query", strings.Repeat("x", MaxQueryLength+1), 0.5, 10, 50},
		{"nan alpha", "q", math.NaN(), 10, 50},
		{"negative topN", "q", 0.5, -1, 50},
		{"topN too large", "q", 0.5, MaxTopN + 1, MaxSemanticTopK},
		{"window smaller than topN", "q", 0.5, 10, 5},
		{"window too large", "q", 0.5, 10, MaxSemanticTopK + 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.query, filter.Spec{}, tc.alpha, tc.topN, tc.window)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}
