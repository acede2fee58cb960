package gamerec

import (
	"github.com/kailas-cloud/gamerec/internal/domain/fusion"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	domrec "github.com/kailas-cloud/gamerec/internal/domain/recommend"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
)

// DefaultAlpha balances similarity and rating equally.
const DefaultAlpha = domrec.DefaultAlpha

// Platform is an operating system a game can run on.
type Platform = item.Platform

// Platform constants.
const (
	Windows = item.Windows
	Mac     = item.Mac
	Linux   = item.Linux
)

// Game is a catalog entry.
type Game struct {
	ID               string
	Name             string
	Price            float64
	Quality          float64
	Genres           []string
	Windows          bool
	Mac              bool
	Linux            bool
	ShortDescription string
	Description      string
	HeaderImage      string
	ReleaseDate      string
	Positive         int64
	Negative         int64
	// Features is the text to embed. Empty means name, genres and description.
	Features string
}

// Recommendation is a ranked game with its score breakdown.
type Recommendation struct {
	Position int
	Game     Game
	// Score is the fused score in [0, 1].
	Score float64
	// Similarity is the raw cosine similarity to the query.
	Similarity float64
	// SemanticScore and QualityScore are the min-max normalized signals.
	SemanticScore float64
	QualityScore  float64
}

// SnapshotInfo describes the loaded snapshot.
type SnapshotInfo struct {
	Version   string
	Model     string
	Dimension int
	Count     int
}

func gameToItem(g *Game) (item.Item, error) {
	//nolint:wrapcheck // caller wraps with position
	return item.New(item.Fields{
		ID:               g.ID,
		Name:             g.Name,
		Price:            g.Price,
		Quality:          g.Quality,
		Genres:           g.Genres,
		Platforms:        item.PlatformSet{Windows: g.Windows, Mac: g.Mac, Linux: g.Linux},
		ShortDescription: g.ShortDescription,
		Description:      g.Description,
		HeaderImage:      g.HeaderImage,
		ReleaseDate:      g.ReleaseDate,
		Positive:         g.Positive,
		Negative:         g.Negative,
		Features:         g.Features,
	})
}

func gameFromItem(it *item.Item) Game {
	f := it.Fields()
	return Game{
		ID:               f.ID,
		Name:             f.Name,
		Price:            f.Price,
		Quality:          f.Quality,
		Genres:           f.Genres,
		Windows:          f.Platforms.Windows,
		Mac:              f.Platforms.Mac,
		Linux:            f.Platforms.Linux,
		ShortDescription: f.ShortDescription,
		Description:      f.Description,
		HeaderImage:      f.HeaderImage,
		ReleaseDate:      f.ReleaseDate,
		Positive:         f.Positive,
		Negative:         f.Negative,
		Features:         f.Features,
	}
}

func recommendationFromResult(r *fusion.Result) Recommendation {
	return Recommendation{
		Position:      r.Position,
		Game:          gameFromItem(&r.Item),
		Score:         r.Score,
		Similarity:    r.Similarity,
		SemanticScore: r.NormSimilarity,
		QualityScore:  r.NormQuality,
	}
}

func infoFromManifest(m snapshot.Manifest) SnapshotInfo {
	return SnapshotInfo{
		Version:   m.Version,
		Model:     m.Model,
		Dimension: m.Dimension,
		Count:     m.Count,
	}
}
