package reload

import (
	"context"

	"github.com/kailas-cloud/gamerec/internal/domain/item"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
)

// Store reads a persisted snapshot: items and vectors aligned by position.
type Store interface {
	Load(ctx context.Context) ([]item.Item, [][]float32, snapshot.Manifest, error)
}

// Publisher makes a snapshot visible to readers.
type Publisher interface {
	Publish(s *snapshot.Snapshot) *snapshot.Snapshot
}
