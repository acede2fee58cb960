package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/vectorindex"
)

// --- Mocks ---

type mockEmbedder struct {
	vec      []float32
	err      error
	called   bool
	lastText string
	deadline bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.called = true
	m.lastText = text
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, nil
}

// blockingEmbedder waits for its context to end.
type blockingEmbedder struct{}

func (blockingEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	<-ctx.Done()
	return domain.EmbeddingResult{}, ctx.Err()
}

func buildIndex(t *testing.T) *vectorindex.Flat {
	t.Helper()
	idx, err := vectorindex.Build([][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
	})
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return idx
}

// --- Tests ---

func TestSearch_RanksBySimilarity(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{2, 0, 0}}
	svc := New(emb, time.Second, nil)

	got, err := svc.Search(context.Background(), buildIndex(t), "space survival", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.lastText != "space survival" {
		t.Errorf("expected query passed through, got %q", emb.lastText)
	}
	if !emb.deadline {
		t.Error("expected embed call to carry a deadline")
	}

	want := []int{0, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, p := range want {
		if got[i].Position != p {
			t.Errorf("rank %d: expected position %d, got %d", i, p, got[i].Position)
		}
	}
	if got[0].Score < 0.999 {
		t.Errorf("query should be normalized before search, top score %f", got[0].Score)
	}
}

func TestSearch_ClampsTopK(t *testing.T) {
	svc := New(&mockEmbedder{vec: []float32{0, 0, 1}}, 0, nil)

	got, err := svc.Search(context.Background(), buildIndex(t), "q", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 results, got %d", len(got))
	}
}

func TestSearch_NoTimeoutMeansNoDeadline(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 0, 0}}
	svc := New(emb, 0, nil)

	if _, err := svc.Search(context.Background(), buildIndex(t), "q", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.deadline {
		t.Error("expected no deadline with zero timeout")
	}
}

func TestSearch_SlowEmbedderTimesOut(t *testing.T) {
	svc := New(blockingEmbedder{}, 20*time.Millisecond, nil)

	start := time.Now()
	_, err := svc.Search(context.Background(), buildIndex(t), "q", 1)
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline cause in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("search did not honor timeout, took %s", elapsed)
	}
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		emb     *mockEmbedder
		topK    int
		noIndex bool
		want    error
	}{
		{"embedder error", &mockEmbedder{err: errors.New("boom")}, 5, false, domain.ErrEmbeddingUnavailable},
		{"empty vector", &mockEmbedder{vec: nil}, 5, false, domain.ErrEmbeddingUnavailable},
		{"wrong dims", &mockEmbedder{vec: []float32{1, 0}}, 5, false, domain.ErrDimensionMismatch},
		{"zero topK", &mockEmbedder{vec: []float32{1, 0, 0}}, 0, false, domain.ErrInvalidRequest},
		{"no index", &mockEmbedder{vec: []float32{1, 0, 0}}, 5, true, domain.ErrNotBuilt},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var idx vectorindex.Searcher
			if !tc.noIndex {
				idx = buildIndex(t)
			}
			_, err := New(tc.emb, time.Second, nil).Search(context.Background(), idx, "q", tc.topK)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSearch_PreservesProviderCause(t *testing.T) {
	cause := errors.New("provider 503")
	_, err := New(&mockEmbedder{err: cause}, 0, nil).
		Search(context.Background(), buildIndex(t), "q", 1)
	if !errors.Is(err, cause) {
		t.Errorf("expected provider cause in chain, got %v", err)
	}
}
