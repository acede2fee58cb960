package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/gamerec/internal/domain/candidate"
	"github.com/kailas-cloud/gamerec/internal/domain/fusion"
	domrec "github.com/kailas-cloud/gamerec/internal/domain/recommend"
)

// Fuse blends similarity and quality into a single ranking.
// Both signals are min-max normalized over cands independently, then combined as
// alpha*sim + (1-alpha)*quality. Ties break on raw similarity, then position.
func Fuse(cands candidate.Set, cat Catalog, alpha float64) ([]fusion.Result, error) {
	if len(cands) == 0 {
		return []fusion.Result{}, nil
	}
	alpha = clampAlpha(alpha)

	results := make([]fusion.Result, len(cands))
	sims := make([]float64, len(cands))
	quals := make([]float64, len(cands))
	for i, c := range cands {
		it, err := cat.At(c.Position)
		if err != nil {
			return nil, fmt.Errorf("fuse candidate %d: %w", c.Position, err)
		}
		sims[i] = c.Score
		quals[i] = it.Quality()
		results[i] = fusion.Result{
			Position:   c.Position,
			Similarity: c.Score,
			Quality:    it.Quality(),
			Item:       it,
		}
	}

	normSims := normalize(sims)
	normQuals := normalize(quals)
	for i := range results {
		results[i].NormSimilarity = normSims[i]
		results[i].NormQuality = normQuals[i]
		results[i].Score = alpha*normSims[i] + (1-alpha)*normQuals[i]
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return a.Position < b.Position
	})
	return results, nil
}

// normalize maps values onto [0, 1] by min-max. A constant array maps to all ones.
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	if hi == lo {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

func clampAlpha(alpha float64) float64 {
	if math.IsNaN(alpha) {
		return domrec.DefaultAlpha
	}
	return min(max(alpha, 0), 1)
}
