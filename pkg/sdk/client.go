package gamerec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/domain/filter"
	"github.com/kailas-cloud/gamerec/internal/domain/fusion"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	domrec "github.com/kailas-cloud/gamerec/internal/domain/recommend"
	"github.com/kailas-cloud/gamerec/internal/repository/snapstore"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
	recommenduc "github.com/kailas-cloud/gamerec/internal/usecase/recommend"
	reloaduc "github.com/kailas-cloud/gamerec/internal/usecase/reload"
	searchuc "github.com/kailas-cloud/gamerec/internal/usecase/search"
)

// recommendUseCase is the subset of the recommend service the client calls.
type recommendUseCase interface {
	Recommend(ctx context.Context, req *domrec.Request) ([]fusion.Result, error)
	GenreVocabulary(ctx context.Context, prefix string) ([]string, error)
	Item(ctx context.Context, position int) (item.Item, error)
	Manifest(ctx context.Context) (snapshot.Manifest, error)
}

// snapshotLoader publishes snapshots.
type snapshotLoader interface {
	Load(ctx context.Context, vectors [][]float32, items []item.Item, m snapshot.Manifest) (snapshot.Manifest, error)
	Reload(ctx context.Context) (snapshot.Manifest, error)
}

// Client is an embedded recommender. Safe for concurrent use; a Load or Reload
// swaps the snapshot without blocking running queries.
type Client struct {
	holder *snapshot.Holder
	rec    recommendUseCase
	loader snapshotLoader
	obs    *observer
}

// New creates a client. With WithSnapshotDir the snapshot is read before New returns.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("gamerec: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store reloaduc.Store
	if cfg.snapshotDir != "" {
		store = snapstore.New(cfg.snapshotDir)
	}

	logger := zap.NewNop()
	holder := snapshot.NewHolder()
	searchSvc := searchuc.New(&embedderAdapter{inner: cfg.embedder}, cfg.searchTimeout, logger)

	c := &Client{
		holder: holder,
		rec:    recommenduc.New(holder, searchSvc, logger),
		loader: reloaduc.New(store, holder, logger),
		obs:    obs,
	}

	if store != nil {
		if _, err := c.Reload(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Ready reports whether a snapshot is loaded.
func (c *Client) Ready() bool {
	return c.holder.Ready()
}

// Load builds a snapshot from games and their vectors (vectors[i] embeds games[i])
// and makes it current. On error the previous snapshot stays.
func (c *Client) Load(ctx context.Context, games []Game, vectors [][]float32, version string) (_ SnapshotInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("load", start, err) }()

	items := make([]item.Item, len(games))
	for i := range games {
		it, err := gameToItem(&games[i])
		if err != nil {
			return SnapshotInfo{}, fmt.Errorf("game %d: %w", i, err)
		}
		items[i] = it
	}

	m, err := c.loader.Load(ctx, vectors, items, snapshot.Manifest{Version: version, CreatedAt: time.Now().UTC()})
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("load: %w", err)
	}
	info := infoFromManifest(m)
	c.obs.loaded(info)
	return info, nil
}

// Reload re-reads the snapshot directory. Requires WithSnapshotDir.
func (c *Client) Reload(ctx context.Context) (_ SnapshotInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reload", start, err) }()

	m, err := c.loader.Reload(ctx)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("reload: %w", err)
	}
	info := infoFromManifest(m)
	c.obs.loaded(info)
	return info, nil
}

// Recommend ranks games for query. Results are ordered by Score descending.
func (c *Client) Recommend(ctx context.Context, query string, opts ...QueryOption) (out []Recommendation, err error) {
	start := time.Now()
	q := defaultQuery()
	for _, o := range opts {
		o(&q)
	}
	defer func() {
		c.obs.observe("recommend", start, err,
			slog.Float64("alpha", q.alpha),
			slog.Int("results", len(out)),
		)
	}()

	spec, err := filter.NewSpec(filter.Options{
		MinPrice:   q.minPrice,
		MaxPrice:   q.maxPrice,
		Genres:     q.genres,
		Platforms:  q.platforms,
		MinQuality: q.minQuality,
	})
	if err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}

	req, err := domrec.New(query, spec, q.alpha, q.topN, q.semanticTopK)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}

	results, err := c.rec.Recommend(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	out = make([]Recommendation, len(results))
	for i := range results {
		out[i] = recommendationFromResult(&results[i])
	}
	c.obs.recommended(len(out))
	return out, nil
}

// Genres lists the catalog's genres starting with prefix (case-insensitive), sorted.
func (c *Client) Genres(ctx context.Context, prefix string) ([]string, error) {
	genres, err := c.rec.GenreVocabulary(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}
	return genres, nil
}

// Game returns the game at position.
func (c *Client) Game(ctx context.Context, position int) (Game, error) {
	it, err := c.rec.Item(ctx, position)
	if err != nil {
		return Game{}, fmt.Errorf("game %d: %w", position, err)
	}
	return gameFromItem(&it), nil
}

// Snapshot describes the current snapshot.
func (c *Client) Snapshot(ctx context.Context) (SnapshotInfo, error) {
	m, err := c.rec.Manifest(ctx)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot: %w", err)
	}
	return infoFromManifest(m), nil
}
