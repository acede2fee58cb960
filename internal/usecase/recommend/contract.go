package recommend

import (
	"context"

	"github.com/kailas-cloud/gamerec/internal/domain/candidate"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
	"github.com/kailas-cloud/gamerec/internal/vectorindex"
)

// Catalog resolves index positions to items.
type Catalog interface {
	At(position int) (item.Item, error)
}

// SnapshotSource returns the currently published snapshot.
type SnapshotSource interface {
	Current() (*snapshot.Snapshot, error)
}

// Searcher produces the similarity window for a text query.
type Searcher interface {
	Search(ctx context.Context, idx vectorindex.Searcher, query string, topK int) (candidate.Set, error)
}
