package recommend

import (
	"testing"

	"github.com/kailas-cloud/gamerec/internal/catalog"
	"github.com/kailas-cloud/gamerec/internal/domain/candidate"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
)

// threeGames is the catalog A(10, 0.9, Action), B(60, 0.2, Strategy), C(20, 0.5, Action).
func threeGames(t *testing.T) *catalog.Catalog {
	t.Helper()
	rows := []item.Fields{
		{ID: "A", Name: "Alpha", Price: 10, Quality: 0.9, Genres: []string{"Action"},
			Platforms: item.PlatformSet{Windows: true}},
		{ID: "B", Name: "Bravo", Price: 60, Quality: 0.2, Genres: []string{"Strategy"},
			Platforms: item.PlatformSet{Windows: true, Mac: true}},
		{ID: "C", Name: "Charlie", Price: 20, Quality: 0.5, Genres: []string{"Action"},
			Platforms: item.PlatformSet{Windows: true, Linux: true}},
	}
	items := make([]item.Item, len(rows))
	for i, f := range rows {
		it, err := item.New(f)
		if err != nil {
			t.Fatalf("item.New(%s): %v", f.ID, err)
		}
		items[i] = it
	}
	return catalog.New(items)
}

// threeScores is the similarity window A:0.9, B:0.8, C:0.3.
func threeScores() candidate.Set {
	return candidate.Set{
		{Position: 0, Score: 0.9},
		{Position: 1, Score: 0.8},
		{Position: 2, Score: 0.3},
	}
}

func f64(v float64) *float64 { return &v }
