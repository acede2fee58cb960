package chi

import (
	"time"

	"github.com/kailas-cloud/gamerec/internal/domain/filter"
	"github.com/kailas-cloud/gamerec/internal/domain/fusion"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
)

// specFromFilters builds a filter spec. A platform flag set to false adds no constraint.
func specFromFilters(f *RecommendFilters) (filter.Spec, error) {
	if f == nil {
		return filter.Spec{}, nil
	}

	var platforms []item.Platform
	if derefBool(f.Windows) {
		platforms = append(platforms, item.Windows)
	}
	if derefBool(f.Mac) {
		platforms = append(platforms, item.Mac)
	}
	if derefBool(f.Linux) {
		platforms = append(platforms, item.Linux)
	}

	spec, err := filter.NewSpec(filter.Options{
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		Genres:     f.Genres,
		Platforms:  platforms,
		MinQuality: f.MinRating,
	})
	if err != nil {
		return filter.Spec{}, err //nolint:wrapcheck // validation message goes to the client as is
	}
	return spec, nil
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func gameFromItem(position int, it *item.Item) Game {
	genres := it.Genres()
	if genres == nil {
		genres = []string{}
	}
	p := it.Platforms()

	return Game{
		Position:         position,
		AppID:            it.ID(),
		Name:             it.Name(),
		PrimaryGenre:     it.PrimaryGenre(),
		Genres:           genres,
		Price:            it.Price(),
		WeightedRating:   it.Quality(),
		Positive:         it.Positive(),
		Negative:         it.Negative(),
		ReleaseDate:      it.ReleaseDate(),
		HeaderImage:      it.HeaderImage(),
		Description:      it.Description(),
		ShortDescription: it.ShortDescription(),
		Platforms:        Platforms{Windows: p.Windows, Mac: p.Mac, Linux: p.Linux},
	}
}

func scoredGameFromResult(r *fusion.Result) ScoredGame {
	return ScoredGame{
		Game:          gameFromItem(r.Position, &r.Item),
		FinalScore:    r.Score,
		SemanticScore: r.NormSimilarity,
		QualityScore:  r.NormQuality,
		Similarity:    r.Similarity,
	}
}

func snapshotToResponse(m snapshot.Manifest) SnapshotResponse {
	resp := SnapshotResponse{
		Version:   m.Version,
		Model:     m.Model,
		Dimension: m.Dimension,
		Count:     m.Count,
	}
	if !m.CreatedAt.IsZero() {
		resp.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
