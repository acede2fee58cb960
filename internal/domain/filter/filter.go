package filter

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
)

// MaxGenres is the maximum number of genres in a single filter.
const MaxGenres = 64

// Options are the optional hard constraints of a recommendation request. Nil or empty means no constraint.
type Options struct {
	MinPrice   *float64
	MaxPrice   *float64
	Genres     []string
	Platforms  []item.Platform
	MinQuality *float64
}

// Spec is a validated conjunction of attribute predicates (immutable value object).
// Each predicate is an OR across its own values, except platforms which are all required.
type Spec struct {
	minPrice   *float64
	maxPrice   *float64
	genres     map[string]struct{}
	platforms  []item.Platform
	minQuality *float64
}

// NewSpec validates and creates a Spec.
func NewSpec(o Options) (Spec, error) {
	if err := checkPrice("min_price", o.MinPrice); err != nil {
		return Spec{}, err
	}
	if err := checkPrice("max_price", o.MaxPrice); err != nil {
		return Spec{}, err
	}
	if o.MinPrice != nil && o.MaxPrice != nil && *o.MinPrice > *o.MaxPrice {
		return Spec{}, fmt.Errorf("min_price %v is greater than max_price %v: %w",
			*o.MinPrice, *o.MaxPrice, domain.ErrInvalidRequest)
	}
	if o.MinQuality != nil && (math.IsNaN(*o.MinQuality) || math.IsInf(*o.MinQuality, 0)) {
		return Spec{}, fmt.Errorf("min_rating must be finite: %w", domain.ErrInvalidRequest)
	}
	if len(o.Genres) > MaxGenres {
		return Spec{}, fmt.Errorf("too many genres (max %d): %w", MaxGenres, domain.ErrInvalidRequest)
	}

	s := Spec{
		minPrice:   clonePtr(o.MinPrice),
		maxPrice:   clonePtr(o.MaxPrice),
		minQuality: clonePtr(o.MinQuality),
	}

	for _, g := range o.Genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if s.genres == nil {
			s.genres = make(map[string]struct{}, len(o.Genres))
		}
		s.genres[g] = struct{}{}
	}

	for _, p := range o.Platforms {
		if !p.IsValid() {
			return Spec{}, fmt.Errorf("unknown platform %q: %w", p, domain.ErrInvalidRequest)
		}
		if !slices.Contains(s.platforms, p) {
			s.platforms = append(s.platforms, p)
		}
	}

	return s, nil
}

// IsEmpty reports whether the spec imposes no constraint.
func (s Spec) IsEmpty() bool {
	return s.minPrice == nil && s.maxPrice == nil && len(s.genres) == 0 &&
		len(s.platforms) == 0 && s.minQuality == nil
}

// Matches reports whether it satisfies every predicate.
func (s Spec) Matches(it *item.Item) bool {
	if s.minPrice != nil && it.Price() < *s.minPrice {
		return false
	}
	if s.maxPrice != nil && it.Price() > *s.maxPrice {
		return false
	}
	if len(s.genres) > 0 && !it.HasAnyGenre(s.genres) {
		return false
	}
	for _, p := range s.platforms {
		if !it.Supports(p) {
			return false
		}
	}
	if s.minQuality != nil && it.Quality() < *s.minQuality {
		return false
	}
	return true
}

// MinPrice returns the inclusive lower price bound.
func (s Spec) MinPrice() *float64 { return clonePtr(s.minPrice) }

// MaxPrice returns the inclusive upper price bound.
func (s Spec) MaxPrice() *float64 { return clonePtr(s.maxPrice) }

// Genres returns the accepted genres, sorted.
func (s Spec) Genres() []string {
	out := make([]string, 0, len(s.genres))
	for g := range s.genres {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

// Platforms returns the required platforms.
func (s Spec) Platforms() []item.Platform { return slices.Clone(s.platforms) }

// MinQuality returns the inclusive quality floor.
func (s Spec) MinQuality() *float64 { return clonePtr(s.minQuality) }

func checkPrice(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return fmt.Errorf("%s must be a non-negative number, got %v: %w", name, *v, domain.ErrInvalidRequest)
	}
	return nil
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
