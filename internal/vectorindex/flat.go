// Package vectorindex provides nearest-neighbor search by cosine similarity over unit vectors.
package vectorindex

import (
	"container/heap"
	"fmt"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/candidate"
)

// Searcher is the read side of an index. Callers depend on this, not on Flat,
// so an approximate implementation can replace the exact one.
type Searcher interface {
	Search(query []float32, k int) (candidate.Set, error)
	Dimension() int
	Len() int
}

// Compile-time check: Flat implements Searcher.
var _ Searcher = (*Flat)(nil)

// Flat is an exact inner-product index (linear scan). Immutable after Build,
// safe for concurrent Search. The zero value is an unbuilt index.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Build stores L2-normalized copies of vectors. Row i keeps position i.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("vector 0 is empty: %w", domain.ErrDimensionMismatch)
	}

	stored := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has length %d, want %d: %w",
				i, len(v), dim, domain.ErrDimensionMismatch)
		}
		stored[i] = Normalized(v)
	}

	return &Flat{dim: dim, vectors: stored}, nil
}

// Dimension returns the vector length, 0 if not built.
func (f *Flat) Dimension() int {
	if f == nil {
		return 0
	}
	return f.dim
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int {
	if f == nil {
		return 0
	}
	return len(f.vectors)
}

// Search returns the min(k, Len) most similar positions, by score descending
// and position ascending on ties. query is expected to be unit-normalized.
func (f *Flat) Search(query []float32, k int) (candidate.Set, error) {
	if f == nil || f.vectors == nil {
		return nil, domain.ErrNotBuilt
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has length %d, index has %d: %w",
			len(query), f.dim, domain.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidRequest)
	}
	k = min(k, len(f.vectors))

	h := make(minHeap, 0, k)
	for pos, v := range f.vectors {
		c := candidate.Candidate{Position: pos, Score: Dot(query, v)}
		if len(h) < k {
			heap.Push(&h, c)
			continue
		}
		if better(c, h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}

	out := make(candidate.Set, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(candidate.Candidate) //nolint:forcetypeassert // heap only holds candidates
	}
	return out, nil
}

// better orders by score descending, then position ascending.
func better(a, b candidate.Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Position < b.Position
}

// minHeap keeps the worst of the current top-k at the root.
type minHeap candidate.Set

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) {
	*h = append(*h, x.(candidate.Candidate)) //nolint:forcetypeassert // heap only holds candidates
}

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
