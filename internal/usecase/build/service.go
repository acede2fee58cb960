// Package build turns catalog feature text into an aligned embedding matrix.
package build

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
)

// Defaults used when the corresponding option is not positive.
const (
	DefaultChunkSize   = 64
	DefaultParallelism = 4
	DefaultMaxWords    = 512
)

// Service embeds texts in chunks with bounded parallelism.
type Service struct {
	embed       BatchEmbedder
	chunkSize   int
	parallelism int
	maxWords    int
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithChunkSize sets the number of texts per embedding call.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithParallelism sets the maximum number of chunks in flight.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithMaxWords caps the word count of generated feature text.
func WithMaxWords(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxWords = n
		}
	}
}

// New creates a build service.
func New(embed BatchEmbedder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		embed:       embed,
		chunkSize:   DefaultChunkSize,
		parallelism: DefaultParallelism,
		maxWords:    DefaultMaxWords,
		logger:      logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Embed returns one vector per text, row i for texts[i].
// All rows must share one non-zero dimension.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	out := make([][]float32, len(texts))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for start := 0; start < len(texts); start += s.chunkSize {
		end := min(start+s.chunkSize, len(texts))
		g.Go(func() error {
			res, err := s.embed.BatchEmbed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed chunk [%d:%d]: %w", start, end, err)
			}
			if len(res.Embeddings) != end-start {
				return fmt.Errorf("chunk [%d:%d] returned %d embeddings: %w",
					start, end, len(res.Embeddings), domain.ErrMisaligned)
			}
			copy(out[start:end], res.Embeddings)

			n := done.Add(int64(end - start))
			s.logger.Debug("Embedded chunk",
				zap.Int("start", start),
				zap.Int("end", end),
				zap.Int64("done", n),
				zap.Int("total", len(texts)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per chunk
	}

	dim := len(out[0])
	for i, v := range out {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("row %d has length %d, want %d: %w",
				i, len(v), dim, domain.ErrDimensionMismatch)
		}
	}
	return out, nil
}

// EmbedItems embeds the feature text of every item, in catalog order.
func (s *Service) EmbedItems(ctx context.Context, items []item.Item) ([][]float32, error) {
	texts := make([]string, len(items))
	for i := range items {
		texts[i] = FeatureText(&items[i], s.maxWords)
	}
	return s.Embed(ctx, texts)
}

// FeatureText returns the item's precomputed feature text, or builds one from
// name, genres and description, truncated to maxWords words.
func FeatureText(it *item.Item, maxWords int) string {
	text := it.Features()
	if strings.TrimSpace(text) == "" {
		desc := it.Description()
		if desc == "" {
			desc = it.ShortDescription()
		}
		text = it.Name() + ". " + strings.Join(it.Genres(), ", ") + ". " + desc
	}
	return truncateWords(text, maxWords)
}

func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
