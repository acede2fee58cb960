package fusion

import "github.com/kailas-cloud/gamerec/internal/domain/item"

// Result is a ranked recommendation with the signals that produced its score.
type Result struct {
	Position       int
	Similarity     float64
	Quality        float64
	NormSimilarity float64
	NormQuality    float64
	Score          float64
	// Item is taken from the same snapshot the candidate came from.
	Item item.Item
}
