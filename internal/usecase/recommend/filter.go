package recommend

import (
	"fmt"

	"github.com/kailas-cloud/gamerec/internal/domain/candidate"
	"github.com/kailas-cloud/gamerec/internal/domain/filter"
)

// Filter keeps the candidates whose items satisfy spec, preserving order and scores.
// An empty spec returns cands unchanged.
func Filter(cands candidate.Set, spec filter.Spec, cat Catalog) (candidate.Set, error) {
	if spec.IsEmpty() {
		return cands, nil
	}

	out := make(candidate.Set, 0, len(cands))
	for _, c := range cands {
		it, err := cat.At(c.Position)
		if err != nil {
			return nil, fmt.Errorf("filter candidate %d: %w", c.Position, err)
		}
		if spec.Matches(&it) {
			out = append(out, c)
		}
	}
	return out, nil
}
