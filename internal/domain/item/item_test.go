package item

import (
	"math"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	it, err := New(Fields{
		ID:        "620",
		Name:      "Portal 2",
		Price:     9.99,
		Quality:   0.97,
		Genres:    []string{" Action ", "Adventure", "Action", ""},
		Platforms: PlatformSet{Windows: true, Linux: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	genres := it.Genres()
	if len(genres) != 2 || genres[0] != "Action" || genres[1] != "Adventure" {
		t.Errorf("expected deduplicated genres [Action Adventure], got %v", genres)
	}
	if it.PrimaryGenre() != "Action" {
		t.Errorf("expected primary genre Action, got %q", it.PrimaryGenre())
	}
	if !it.Supports(Windows) || it.Supports(Mac) || !it.Supports(Linux) {
		t.Errorf("unexpected platform support: %+v", it.Platforms())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		f    Fields
	}{
		{"missing id", Fields{Price: 1}},
		{"negative price", Fields{ID: "1", Price: -1}},
		{"nan price", Fields{ID: "1", Price: math.NaN()}},
		{"inf price", Fields{ID: "1", Price: math.Inf(1)}},
		{"nan quality", Fields{ID: "1", Quality: math.NaN()}},
		{"negative reviews", Fields{ID: "1", Negative: -3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.f); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGenres_ReturnsCopy(t *testing.T) {
	it, _ := New(Fields{ID: "1", Genres: []string{"RPG"}})
	g := it.Genres()
	g[0] = "mutated"
	if it.PrimaryGenre() != "RPG" {
		t.Errorf("item was mutated through Genres(): %q", it.PrimaryGenre())
	}
}

func TestPrimaryGenre_Unknown(t *testing.T) {
	it, _ := New(Fields{ID: "1"})
	if it.PrimaryGenre() != UnknownGenre {
		t.Errorf("expected %q, got %q", UnknownGenre, it.PrimaryGenre())
	}
}

func TestHasAnyGenre(t *testing.T) {
	it, _ := New(Fields{ID: "1", Genres: []string{"Action", "Indie"}})

	if !it.HasAnyGenre(map[string]struct{}{"Strategy": {}, "Indie": {}}) {
		t.Error("expected match on Indie")
	}
	if it.HasAnyGenre(map[string]struct{}{"Strategy": {}}) {
		t.Error("unexpected match")
	}
	if it.HasAnyGenre(nil) {
		t.Error("nil set should not match")
	}
}

func TestParsePlatform(t *testing.T) {
	for _, s := range []string{"windows", "Mac", " LINUX "} {
		if _, err := ParsePlatform(s); err != nil {
			t.Errorf("ParsePlatform(%q): unexpected error %v", s, err)
		}
	}
	if _, err := ParsePlatform("amiga"); err == nil {
		t.Error("expected error for unknown platform")
	}
}
