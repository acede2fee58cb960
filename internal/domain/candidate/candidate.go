package candidate

// Candidate is a similarity hit. Position is the row in both the embedding matrix and the catalog.
type Candidate struct {
	Position int
	Score    float64
}

// Set is an ordered candidate list. Positions are never re-indexed after filtering.
type Set []Candidate

// Positions returns the catalog positions in order.
func (s Set) Positions() []int {
	out := make([]int, len(s))
	for i, c := range s {
		out[i] = c.Position
	}
	return out
}

// Scores returns the similarity scores in order.
func (s Set) Scores() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Score
	}
	return out
}
