package build

import (
	"context"

	"github.com/kailas-cloud/gamerec/internal/domain"
)

// BatchEmbedder vectorizes a chunk of texts. Output order matches input order.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
