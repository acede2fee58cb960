// Package snapshot pairs an index with its catalog and publishes them atomically.
package snapshot

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/gamerec/internal/catalog"
	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	"github.com/kailas-cloud/gamerec/internal/vectorindex"
)

// Manifest describes how a snapshot was produced.
type Manifest struct {
	Version   string    `yaml:"version"`
	Model     string    `yaml:"model"`
	Dimension int       `yaml:"dimension"`
	Count     int       `yaml:"count"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Snapshot is an aligned index and catalog. Position i in one is position i in the other.
// Never mutated after New.
type Snapshot struct {
	index    vectorindex.Searcher
	catalog  *catalog.Catalog
	manifest Manifest
	loadedAt time.Time
}

// New checks alignment and builds a snapshot.
// Manifest dimension and count are filled from the index when zero and verified otherwise.
func New(idx vectorindex.Searcher, cat *catalog.Catalog, m Manifest) (*Snapshot, error) {
	if idx == nil || idx.Len() == 0 {
		return nil, domain.ErrNotBuilt
	}
	if idx.Len() != cat.Count() {
		return nil, fmt.Errorf("index has %d vectors, catalog has %d items: %w",
			idx.Len(), cat.Count(), domain.ErrMisaligned)
	}
	if m.Dimension == 0 {
		m.Dimension = idx.Dimension()
	}
	if m.Dimension != idx.Dimension() {
		return nil, fmt.Errorf("manifest dimension %d, index dimension %d: %w",
			m.Dimension, idx.Dimension(), domain.ErrDimensionMismatch)
	}
	if m.Count == 0 {
		m.Count = idx.Len()
	}
	if m.Count != idx.Len() {
		return nil, fmt.Errorf("manifest count %d, index has %d: %w", m.Count, idx.Len(), domain.ErrMisaligned)
	}

	return &Snapshot{index: idx, catalog: cat, manifest: m, loadedAt: time.Now()}, nil
}

// Build creates the index and catalog from aligned rows: vectors[i] embeds items[i].
func Build(vectors [][]float32, items []item.Item, m Manifest) (*Snapshot, error) {
	if len(vectors) != len(items) {
		return nil, fmt.Errorf("%d vectors for %d items: %w", len(vectors), len(items), domain.ErrMisaligned)
	}
	idx, err := vectorindex.Build(vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return New(idx, catalog.New(items), m)
}

// Index returns the similarity index.
func (s *Snapshot) Index() vectorindex.Searcher { return s.index }

// Catalog returns the item catalog.
func (s *Snapshot) Catalog() *catalog.Catalog { return s.catalog }

// Manifest returns the build metadata.
func (s *Snapshot) Manifest() Manifest { return s.manifest }

// LoadedAt returns when the snapshot was created in this process.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Holder publishes the current snapshot to concurrent readers.
// Readers see either the old or the new snapshot, never a mix.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates an empty holder.
func NewHolder() *Holder { return &Holder{} }

// Current returns the published snapshot, or ErrNotBuilt before the first Publish.
func (h *Holder) Current() (*Snapshot, error) {
	s := h.current.Load()
	if s == nil {
		return nil, domain.ErrNotBuilt
	}
	return s, nil
}

// Publish replaces the current snapshot and returns the previous one (nil on first publish).
func (h *Holder) Publish(s *Snapshot) *Snapshot {
	return h.current.Swap(s)
}

// Ready reports whether a snapshot has been published.
func (h *Holder) Ready() bool { return h.current.Load() != nil }
