package recommend

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/candidate"
	"github.com/kailas-cloud/gamerec/internal/domain/filter"
	"github.com/kailas-cloud/gamerec/internal/domain/fusion"
	domrec "github.com/kailas-cloud/gamerec/internal/domain/recommend"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
	"github.com/kailas-cloud/gamerec/internal/vectorindex"
)

// --- Mocks ---

type mockSearcher struct {
	cands    candidate.Set
	err      error
	lastTopK int
	lastIdx  vectorindex.Searcher
	calls    int
}

func (m *mockSearcher) Search(
	_ context.Context, idx vectorindex.Searcher, _ string, topK int,
) (candidate.Set, error) {
	m.calls++
	m.lastTopK = topK
	m.lastIdx = idx
	if m.err != nil {
		return nil, m.err
	}
	return slices.Clone(m.cands), nil
}

func threeGameHolder(t *testing.T) (*snapshot.Holder, *snapshot.Snapshot) {
	t.Helper()
	idx, err := vectorindex.Build([][]float32{{1, 0}, {0, 1}, {1, 1}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	snap, err := snapshot.New(idx, threeGames(t), snapshot.Manifest{Version: "test"})
	if err != nil {
		t.Fatalf("snapshot.New: %v", err)
	}
	h := snapshot.NewHolder()
	h.Publish(snap)
	return h, snap
}

func mustRequest(t *testing.T, spec filter.Spec, alpha float64, topN, window int) *domrec.Request {
	t.Helper()
	r, err := domrec.New("space survival with crafting", spec, alpha, topN, window)
	if err != nil {
		t.Fatalf("domrec.New: %v", err)
	}
	return &r
}

func resultIDs(rs []fusion.Result) []string {
	out := make([]string, len(rs))
	for i := range rs {
		out[i] = rs[i].Item.ID()
	}
	return out
}

// --- Tests ---

func TestRecommend_PriceScenario(t *testing.T) {
	holder, snap := threeGameHolder(t)
	search := &mockSearcher{cands: threeScores()}
	svc := New(holder, search, nil)

	req := mustRequest(t, mustSpec(t, filter.Options{MaxPrice: f64(30)}), 0.5, 2, 0)
	got, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if search.lastTopK != domrec.DefaultSemanticTopK {
		t.Errorf("expected window %d, got %d", domrec.DefaultSemanticTopK, search.lastTopK)
	}
	if search.lastIdx != snap.Index() {
		t.Error("expected search against the published index")
	}
	if ids := resultIDs(got); !slices.Equal(ids, []string{"A", "C"}) {
		t.Fatalf("expected [A C], got %v", ids)
	}
	if got[0].Score != 1 || got[1].Score != 0 {
		t.Errorf("expected final scores [1 0], got [%v %v]", got[0].Score, got[1].Score)
	}
}

func TestRecommend_GenreScenario(t *testing.T) {
	holder, _ := threeGameHolder(t)
	svc := New(holder, &mockSearcher{cands: threeScores()}, nil)

	got, err := svc.Recommend(context.Background(),
		mustRequest(t, mustSpec(t, filter.Options{Genres: []string{"Strategy"}}), 0.5, 2, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := resultIDs(got); !slices.Equal(ids, []string{"B"}) {
		t.Fatalf("expected [B], got %v", ids)
	}

	got, err = svc.Recommend(context.Background(),
		mustRequest(t, mustSpec(t, filter.Options{Genres: []string{"Strategy"}, MaxPrice: f64(30)}), 0.5, 2, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("genre AND price should exclude B, got %v", resultIDs(got))
	}
}

func TestRecommend_TruncatesToTopN(t *testing.T) {
	holder, _ := threeGameHolder(t)
	svc := New(holder, &mockSearcher{cands: threeScores()}, nil)

	got, err := svc.Recommend(context.Background(), mustRequest(t, filter.Spec{}, 0.5, 1, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
}

func TestRecommend_EmptySpecEqualsNoFilter(t *testing.T) {
	holder, snap := threeGameHolder(t)
	svc := New(holder, &mockSearcher{cands: threeScores()}, nil)

	got, err := svc.Recommend(context.Background(), mustRequest(t, filter.Spec{}, 0.7, 3, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	direct, err := Fuse(threeScores(), snap.Catalog(), 0.7)
	if err != nil {
		t.Fatalf("Fuse: %v", err)
	}
	if !reflect.DeepEqual(got, direct) {
		t.Errorf("empty spec should match unfiltered fusion:\n got  %+v\n want %+v", got, direct)
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	holder, _ := threeGameHolder(t)
	svc := New(holder, &mockSearcher{cands: threeScores()}, nil)
	req := mustRequest(t, mustSpec(t, filter.Options{MinQuality: f64(0.1)}), 0.4, 3, 3)

	first, err := svc.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 20 {
		again, err := svc.Recommend(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("repeated calls returned different results")
		}
	}
}

func TestRecommend_NoSnapshot(t *testing.T) {
	search := &mockSearcher{}
	svc := New(snapshot.NewHolder(), search, nil)

	_, err := svc.Recommend(context.Background(), mustRequest(t, filter.Spec{}, 0.5, 0, 0))
	if !errors.Is(err, domain.ErrNotBuilt) {
		t.Fatalf("expected ErrNotBuilt, got %v", err)
	}
	if search.calls != 0 {
		t.Error("search should not run without a snapshot")
	}
}

func TestRecommend_SearchError(t *testing.T) {
	holder, _ := threeGameHolder(t)
	svc := New(holder, &mockSearcher{err: domain.ErrEmbeddingUnavailable}, nil)

	_, err := svc.Recommend(context.Background(), mustRequest(t, filter.Spec{}, 0.5, 0, 0))
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestGenreVocabularyAndItem(t *testing.T) {
	holder, _ := threeGameHolder(t)
	svc := New(holder, &mockSearcher{}, nil)
	ctx := context.Background()

	genres, err := svc.GenreVocabulary(ctx, "")
	if err != nil {
		t.Fatalf("GenreVocabulary: %v", err)
	}
	if !slices.Equal(genres, []string{"Action", "Strategy"}) {
		t.Errorf("unexpected genres %v", genres)
	}

	it, err := svc.Item(ctx, 2)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if it.ID() != "C" {
		t.Errorf("expected C, got %q", it.ID())
	}
	if _, err := svc.Item(ctx, 3); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}

	m, err := svc.Manifest(ctx)
	if err != nil || m.Version != "test" {
		t.Errorf("unexpected manifest %+v, err %v", m, err)
	}

	empty := New(snapshot.NewHolder(), &mockSearcher{}, nil)
	if _, err := empty.GenreVocabulary(ctx, ""); !errors.Is(err, domain.ErrNotBuilt) {
		t.Errorf("expected ErrNotBuilt, got %v", err)
	}
}
