// gamerec-build embeds a catalog and writes a snapshot directory for the API server.
//
// Usage:
//
//	gamerec-build -items data/items.parquet -out data/snapshot -version 2026-10-19
//
// Embedding provider, cache and chunking settings come from config/<ENV>.yaml.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/config"
	"github.com/kailas-cloud/gamerec/internal/db"
	dbRedis "github.com/kailas-cloud/gamerec/internal/db/redis"
	"github.com/kailas-cloud/gamerec/internal/embedchain"
	logpkg "github.com/kailas-cloud/gamerec/internal/logger"
	"github.com/kailas-cloud/gamerec/internal/metrics"
	"github.com/kailas-cloud/gamerec/internal/repository/snapstore"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
	buildemb "github.com/kailas-cloud/gamerec/internal/usecase/build"
	"github.com/kailas-cloud/gamerec/internal/version"
)

type flags struct {
	items       string
	out         string
	version     string
	noCache     bool
	metricsPort string
}

func parseFlags(cfg *config.Config) flags {
	f := flags{}
	flag.StringVar(&f.items, "items", cfg.Build.ItemsPath, "items parquet file produced by ETL")
	flag.StringVar(&f.out, "out", cfg.Snapshot.Dir, "snapshot output directory")
	flag.StringVar(&f.version, "version", time.Now().UTC().Format("20060102T150405Z"), "snapshot version label")
	flag.BoolVar(&f.noCache, "no-cache", false, "skip the embedding cache even if configured")
	flag.StringVar(&f.metricsPort, "metrics-port", "", "serve Prometheus metrics on this port while building")
	flag.Parse()
	return f
}

func main() {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	f := parseFlags(&cfg)

	logger, err := logpkg.NewLogger(env, "gamerec-build", cfg.Logging.Level)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, &cfg, f, logger); err != nil {
		cancel()
		logger.Fatal("Build failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, f flags, logger *zap.Logger) error {
	start := time.Now()
	metrics.RegisterEmbeddingMetrics()

	logger.Info("Starting gamerec-build",
		zap.String("build", version.Get().String()),
		zap.String("items", f.items),
		zap.String("out", f.out),
		zap.String("snapshot_version", f.version),
	)

	if f.metricsPort != "" {
		srv := &http.Server{Addr: ":" + f.metricsPort, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
		}()
	}

	items, err := snapstore.ReadItems(ctx, f.items)
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}
	logger.Info("Items loaded", zap.String("path", f.items), zap.Int("count", len(items)))

	_, vecCfg, provCfg, err := cfg.ActiveVectorizer()
	if err != nil {
		return fmt.Errorf("active vectorizer: %w", err)
	}

	var kv db.KVStore
	if cfg.Cache.Enabled() && !f.noCache {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Username:   cfg.Cache.Username,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			return fmt.Errorf("create cache store: %w", err)
		}
		defer store.Close()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("cache not ready: %w", err)
		}
		kv = store
	}

	docEmbedder := embedchain.Build(embedchain.Options{
		ProviderName: vecCfg.Provider,
		Provider:     provCfg,
		Vectorizer:   vecCfg,
		Instruction:  vecCfg.DocumentInstruction,
		Cache:        kv,
		CacheTTL:     time.Duration(cfg.Cache.TTLSec) * time.Second,
		Logger:       logger,
	})

	svc := buildemb.New(docEmbedder, logger,
		buildemb.WithChunkSize(cfg.Build.ChunkSize),
		buildemb.WithParallelism(cfg.Build.Parallelism),
		buildemb.WithMaxWords(cfg.Build.MaxWords),
	)

	vectors, err := svc.EmbedItems(ctx, items)
	if err != nil {
		return fmt.Errorf("embed items: %w", err)
	}

	m := snapshot.Manifest{Version: f.version, Model: vecCfg.Model}
	if err := snapstore.New(f.out).Save(ctx, items, vectors, m); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	logger.Info("Snapshot written",
		zap.String("dir", f.out),
		zap.String("version", f.version),
		zap.Int("items", len(items)),
		zap.Int("dimension", len(vectors[0])),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
