package vectorindex

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/kailas-cloud/gamerec/internal/domain"
)

func TestBuild_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := Build(nil); !errors.Is(err, domain.ErrEmptyIndex) {
			t.Fatalf("expected ErrEmptyIndex, got %v", err)
		}
	})

	t.Run("inconsistent lengths", func(t *testing.T) {
		_, err := Build([][]float32{{1, 0}, {1, 0, 0}})
		if !errors.Is(err, domain.ErrDimensionMismatch) {
			t.Fatalf("expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("zero dimension", func(t *testing.T) {
		_, err := Build([][]float32{{}})
		if !errors.Is(err, domain.ErrDimensionMismatch) {
			t.Fatalf("expected ErrDimensionMismatch, got %v", err)
		}
	})
}

func TestBuild_StoresNormalizedCopy(t *testing.T) {
	src := [][]float32{{3, 4}}
	idx, err := Build(src)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	src[0][0] = 100

	res, err := idx.Search([]float32{0.6, 0.8}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if math.Abs(res[0].Score-1) > 1e-6 {
		t.Errorf("expected cosine 1.0 against stored unit vector, got %f", res[0].Score)
	}
}

func TestSearch_NotBuilt(t *testing.T) {
	var zero Flat
	if _, err := zero.Search([]float32{1}, 1); !errors.Is(err, domain.ErrNotBuilt) {
		t.Fatalf("zero value: expected ErrNotBuilt, got %v", err)
	}

	var nilIdx *Flat
	if _, err := nilIdx.Search([]float32{1}, 1); !errors.Is(err, domain.ErrNotBuilt) {
		t.Fatalf("nil: expected ErrNotBuilt, got %v", err)
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx, _ := Build([][]float32{{1, 0, 0}})
	if _, err := idx.Search([]float32{1, 0}, 1); !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSearch_NonPositiveK(t *testing.T) {
	idx, _ := Build([][]float32{{1, 0}})
	if _, err := idx.Search([]float32{1, 0}, 0); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSearch_OrderAndClamp(t *testing.T) {
	idx, _ := Build([][]float32{
		{0, 1}, // 0: orthogonal
		{1, 0}, // 1: identical
		{1, 1}, // 2: 45 degrees
		{-1, 0},
	})

	res, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 4 {
		t.Fatalf("expected k clamped to 4, got %d", len(res))
	}

	want := []int{1, 2, 0, 3}
	for i, p := range want {
		if res[i].Position != p {
			t.Errorf("rank %d: expected position %d, got %d", i, p, res[i].Position)
		}
	}
	if math.Abs(res[3].Score+1) > 1e-6 {
		t.Errorf("expected -1 for opposite vector, got %f", res[3].Score)
	}
}

func TestSearch_TiesByAscendingPosition(t *testing.T) {
	idx, _ := Build([][]float32{{0, 1}, {1, 0}, {0, 1}, {1, 0}, {1, 0}})

	res, err := idx.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res[0].Position != 1 || res[1].Position != 3 {
		t.Errorf("expected positions [1 3], got %v", res.Positions())
	}
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	idx, _ := Build([][]float32{{0, 0}, {1, 0}})
	res, _ := idx.Search([]float32{1, 0}, 2)
	if res[1].Position != 0 || res[1].Score != 0 {
		t.Errorf("expected zero vector last with score 0, got %+v", res[1])
	}
}

func TestSearch_MatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n, dim = 300, 16

	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = make([]float32, dim)
		for j := range vectors[i] {
			vectors[i][j] = float32(rng.NormFloat64())
		}
	}
	idx, err := Build(vectors)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	query := Normalized(vectors[42])
	for _, k := range []int{1, 5, 37, n} {
		res, err := idx.Search(query, k)
		if err != nil {
			t.Fatalf("Search k=%d: %v", k, err)
		}
		if len(res) != k {
			t.Fatalf("k=%d: expected %d results, got %d", k, k, len(res))
		}

		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		scores := make([]float64, n)
		for i, v := range idx.vectors {
			scores[i] = Dot(query, v)
		}
		sort.SliceStable(all, func(a, b int) bool { return scores[all[a]] > scores[all[b]] })

		for i := range res {
			if res[i].Position != all[i] {
				t.Fatalf("k=%d rank %d: expected %d, got %d", k, i, all[i], res[i].Position)
			}
			if i > 0 && res[i].Score > res[i-1].Score {
				t.Fatalf("k=%d: scores not non-increasing at %d", k, i)
			}
		}
	}
	if idx.Len() != n || idx.Dimension() != dim {
		t.Errorf("unexpected Len/Dimension: %d/%d", idx.Len(), idx.Dimension())
	}
}

func TestNormalized(t *testing.T) {
	v := Normalized([]float32{3, 4})
	if math.Abs(Norm(v)-1) > 1e-6 {
		t.Errorf("expected unit norm, got %f", Norm(v))
	}
	z := Normalized([]float32{0, 0})
	if z[0] != 0 || z[1] != 0 {
		t.Errorf("zero vector should stay zero, got %v", z)
	}
}
