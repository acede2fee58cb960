package item

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// UnknownGenre is the primary genre of an item without genres.
const UnknownGenre = "Unknown"

// Fields is the raw attribute set of a catalog row, as produced by ETL.
type Fields struct {
	ID               string
	Name             string
	Price            float64
	Quality          float64
	Genres           []string
	Platforms        PlatformSet
	ShortDescription string
	Description      string
	HeaderImage      string
	ReleaseDate      string
	Positive         int64
	Negative         int64
	// Features is the text the embedding was computed from.
	Features string
}

// Item is a catalog row (immutable value object).
type Item struct {
	id               string
	name             string
	price            float64
	quality          float64
	genres           []string
	platforms        PlatformSet
	shortDescription string
	description      string
	headerImage      string
	releaseDate      string
	positive         int64
	negative         int64
	features         string
}

// New validates and creates an Item.
// Price must be finite and non-negative, quality finite. Genres are trimmed and deduplicated, order kept.
func New(f Fields) (Item, error) {
	if f.ID == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if math.IsNaN(f.Price) || math.IsInf(f.Price, 0) || f.Price < 0 {
		return Item{}, fmt.Errorf("item %q: price must be a non-negative number, got %v", f.ID, f.Price)
	}
	if math.IsNaN(f.Quality) || math.IsInf(f.Quality, 0) {
		return Item{}, fmt.Errorf("item %q: quality must be finite, got %v", f.ID, f.Quality)
	}
	if f.Positive < 0 || f.Negative < 0 {
		return Item{}, fmt.Errorf("item %q: review counts must be non-negative", f.ID)
	}

	return Item{
		id:               f.ID,
		name:             f.Name,
		price:            f.Price,
		quality:          f.Quality,
		genres:           normalizeGenres(f.Genres),
		platforms:        f.Platforms,
		shortDescription: f.ShortDescription,
		description:      f.Description,
		headerImage:      f.HeaderImage,
		releaseDate:      f.ReleaseDate,
		positive:         f.Positive,
		negative:         f.Negative,
		features:         f.Features,
	}, nil
}

// ID returns the item identifier (Steam appid for games).
func (it *Item) ID() string { return it.id }

// Name returns the display name.
func (it *Item) Name() string { return it.name }

// Price returns the price in USD.
func (it *Item) Price() float64 { return it.price }

// Quality returns the precomputed weighted rating.
func (it *Item) Quality() float64 { return it.quality }

// Genres returns a copy of the category tags.
func (it *Item) Genres() []string { return slices.Clone(it.genres) }

// PrimaryGenre returns the first genre, or UnknownGenre.
func (it *Item) PrimaryGenre() string {
	if len(it.genres) == 0 {
		return UnknownGenre
	}
	return it.genres[0]
}

// HasAnyGenre reports whether the item carries at least one genre from set.
func (it *Item) HasAnyGenre(set map[string]struct{}) bool {
	for _, g := range it.genres {
		if _, ok := set[g]; ok {
			return true
		}
	}
	return false
}

// Platforms returns the platform support flags.
func (it *Item) Platforms() PlatformSet { return it.platforms }

// Supports reports whether the item runs on p.
func (it *Item) Supports(p Platform) bool { return it.platforms.Has(p) }

// ShortDescription returns the short description.
func (it *Item) ShortDescription() string { return it.shortDescription }

// Description returns the detailed description.
func (it *Item) Description() string { return it.description }

// HeaderImage returns the header image URL.
func (it *Item) HeaderImage() string { return it.headerImage }

// ReleaseDate returns the release date as provided by ETL.
func (it *Item) ReleaseDate() string { return it.releaseDate }

// Positive returns the number of positive reviews.
func (it *Item) Positive() int64 { return it.positive }

// Negative returns the number of negative reviews.
func (it *Item) Negative() int64 { return it.negative }

// Features returns the text the embedding was computed from.
func (it *Item) Features() string { return it.features }

// Fields returns the raw attributes, e.g. for persisting the item.
func (it *Item) Fields() Fields {
	return Fields{
		ID:               it.id,
		Name:             it.name,
		Price:            it.price,
		Quality:          it.quality,
		Genres:           it.Genres(),
		Platforms:        it.platforms,
		ShortDescription: it.shortDescription,
		Description:      it.description,
		HeaderImage:      it.headerImage,
		ReleaseDate:      it.releaseDate,
		Positive:         it.positive,
		Negative:         it.negative,
		Features:         it.features,
	}
}

func normalizeGenres(genres []string) []string {
	if len(genres) == 0 {
		return nil
	}
	out := make([]string, 0, len(genres))
	seen := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}
