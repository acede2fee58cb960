package snapstore

import (
	"fmt"

	"github.com/kailas-cloud/gamerec/internal/domain/item"
)

// itemRow is one catalog row in items.parquet. Row order is index position.
type itemRow struct {
	AppID               string   `parquet:"appid"`
	Name                string   `parquet:"name"`
	Price               float64  `parquet:"price"`
	WeightedRating      float64  `parquet:"weighted_rating"`
	Genres              []string `parquet:"genres,list"`
	Windows             bool     `parquet:"windows"`
	Mac                 bool     `parquet:"mac"`
	Linux               bool     `parquet:"linux"`
	ShortDescription    string   `parquet:"short_description"`
	DetailedDescription string   `parquet:"detailed_description"`
	HeaderImage         string   `parquet:"header_image"`
	ReleaseDate         string   `parquet:"release_date"`
	Positive            int64    `parquet:"positive"`
	Negative            int64    `parquet:"negative"`
	Features            string   `parquet:"features"`
}

// vectorRow is one embedding in embeddings.parquet.
type vectorRow struct {
	Position int64     `parquet:"position"`
	Vector   []float32 `parquet:"vector,list"`
}

func itemToRow(it *item.Item) itemRow {
	p := it.Platforms()
	return itemRow{
		AppID:               it.ID(),
		Name:                it.Name(),
		Price:               it.Price(),
		WeightedRating:      it.Quality(),
		Genres:              it.Genres(),
		Windows:             p.Windows,
		Mac:                 p.Mac,
		Linux:               p.Linux,
		ShortDescription:    it.ShortDescription(),
		DetailedDescription: it.Description(),
		HeaderImage:         it.HeaderImage(),
		ReleaseDate:         it.ReleaseDate(),
		Positive:            it.Positive(),
		Negative:            it.Negative(),
		Features:            it.Features(),
	}
}

func itemFromRow(r *itemRow) (item.Item, error) {
	it, err := item.New(item.Fields{
		ID:               r.AppID,
		Name:             r.Name,
		Price:            r.Price,
		Quality:          r.WeightedRating,
		Genres:           r.Genres,
		Platforms:        item.PlatformSet{Windows: r.Windows, Mac: r.Mac, Linux: r.Linux},
		ShortDescription: r.ShortDescription,
		Description:      r.DetailedDescription,
		HeaderImage:      r.HeaderImage,
		ReleaseDate:      r.ReleaseDate,
		Positive:         r.Positive,
		Negative:         r.Negative,
		Features:         r.Features,
	})
	if err != nil {
		return item.Item{}, fmt.Errorf("hydrate item: %w", err)
	}
	return it, nil
}
