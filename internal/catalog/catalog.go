// Package catalog holds item metadata addressed by index position.
package catalog

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
)

// Catalog is an immutable, position-addressed list of items.
// Position i describes the same item as index vector i.
type Catalog struct {
	items []item.Item

	genresOnce sync.Once
	genres     []string
}

// New copies items into a catalog.
func New(items []item.Item) *Catalog {
	return &Catalog{items: slices.Clone(items)}
}

// Count returns the number of items.
func (c *Catalog) Count() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// At returns the item at position pos.
func (c *Catalog) At(pos int) (item.Item, error) {
	if pos < 0 || pos >= c.Count() {
		return item.Item{}, fmt.Errorf("position %d (count %d): %w", pos, c.Count(), domain.ErrOutOfRange)
	}
	return c.items[pos], nil
}

// GenreVocabulary returns every distinct genre in the catalog, sorted.
// Computed once per catalog.
func (c *Catalog) GenreVocabulary() []string {
	if c == nil {
		return nil
	}
	c.genresOnce.Do(func() {
		seen := make(map[string]struct{})
		for i := range c.items {
			for _, g := range c.items[i].Genres() {
				seen[g] = struct{}{}
			}
		}
		c.genres = make([]string, 0, len(seen))
		for g := range seen {
			c.genres = append(c.genres, g)
		}
		slices.Sort(c.genres)
	})
	return slices.Clone(c.genres)
}

// GenresWithPrefix returns vocabulary entries starting with prefix, case-insensitive.
func (c *Catalog) GenresWithPrefix(prefix string) []string {
	all := c.GenreVocabulary()
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return all
	}
	out := all[:0]
	for _, g := range all {
		if strings.HasPrefix(strings.ToLower(g), prefix) {
			out = append(out, g)
		}
	}
	return out
}
