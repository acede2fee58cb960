package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
)

func f64(v float64) *float64 { return &v }

func mustItem(t *testing.T, f item.Fields) *item.Item {
	t.Helper()
	it, err := item.New(f)
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return &it
}

func TestNewSpec_Empty(t *testing.T) {
	s, err := NewSpec(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsEmpty() {
		t.Error("expected empty spec")
	}

	s, _ = NewSpec(Options{Genres: []string{"", "  "}})
	if !s.IsEmpty() {
		t.Error("blank genres should not count as a constraint")
	}
}

func TestNewSpec_Validation(t *testing.T) {
	tests := []struct {
		name string
		o    Options
	}{
		{"negative min price", Options{MinPrice: f64(-1)}},
		{"nan max price", Options{MaxPrice: f64(math.NaN())}},
		{"inverted range", Options{MinPrice: f64(30), MaxPrice: f64(10)}},
		{"inf quality", Options{MinQuality: f64(math.Inf(-1))}},
		{"unknown platform", Options{Platforms: []item.Platform{"amiga"}}},
		{"too many genres", Options{Genres: make([]string, MaxGenres+1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSpec(tc.o); !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNewSpec_CopiesInputs(t *testing.T) {
	maxPrice := 30.0
	s, err := NewSpec(Options{MaxPrice: &maxPrice, Platforms: []item.Platform{item.Mac, item.Mac}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	maxPrice = 1

	if got := *s.MaxPrice(); got != 30 {
		t.Errorf("spec was mutated through caller pointer: %v", got)
	}
	if len(s.Platforms()) != 1 {
		t.Errorf("expected deduplicated platforms, got %v", s.Platforms())
	}
}

func TestSpec_Matches(t *testing.T) {
	game := mustItem(t, item.Fields{
		ID:        "1",
		Price:     20,
		Quality:   0.5,
		Genres:    []string{"Action", "Indie"},
		Platforms: item.PlatformSet{Windows: true, Linux: true},
	})

	tests := []struct {
		name string
		o    Options
		want bool
	}{
		{"empty", Options{}, true},
		{"max price inclusive", Options{MaxPrice: f64(20)}, true},
		{"max price excludes", Options{MaxPrice: f64(19.99)}, false},
		{"min price inclusive", Options{MinPrice: f64(20)}, true},
		{"min price excludes", Options{MinPrice: f64(20.01)}, false},
		{"genre match any", Options{Genres: []string{"Strategy", "Indie"}}, true},
		{"genre no match", Options{Genres: []string{"Strategy"}}, false},
		{"platforms all present", Options{Platforms: []item.Platform{item.Windows, item.Linux}}, true},
		{"platforms one missing", Options{Platforms: []item.Platform{item.Windows, item.Mac}}, false},
		{"quality inclusive", Options{MinQuality: f64(0.5)}, true},
		{"quality excludes", Options{MinQuality: f64(0.51)}, false},
		{"conjunction fails on one predicate", Options{
			MaxPrice: f64(30), Genres: []string{"Action"}, MinQuality: f64(0.9),
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSpec(tc.o)
			if err != nil {
				t.Fatalf("NewSpec: %v", err)
			}
			if got := s.Matches(game); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpec_GenresSorted(t *testing.T) {
	s, _ := NewSpec(Options{Genres: []string{"RPG", "Action", "RPG"}})
	g := s.Genres()
	if len(g) != 2 || g[0] != "Action" || g[1] != "RPG" {
		t.Errorf("expected [Action RPG], got %v", g)
	}
}

func TestSpec_MatchesItemWithoutGenres(t *testing.T) {
	bare := mustItem(t, item.Fields{ID: "2"})
	s, _ := NewSpec(Options{Genres: []string{"Action"}})
	if s.Matches(bare) {
		t.Error("item without genres must not pass a genre filter")
	}
}
