package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamerec/internal/config"
	"github.com/kailas-cloud/gamerec/internal/db"
	dbRedis "github.com/kailas-cloud/gamerec/internal/db/redis"
	"github.com/kailas-cloud/gamerec/internal/embedchain"
	logpkg "github.com/kailas-cloud/gamerec/internal/logger"
	"github.com/kailas-cloud/gamerec/internal/metrics"
	"github.com/kailas-cloud/gamerec/internal/repository/snapstore"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
	chiTransport "github.com/kailas-cloud/gamerec/internal/transport/chi"
	"github.com/kailas-cloud/gamerec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/gamerec/internal/usecase/recommend"
	reloaduc "github.com/kailas-cloud/gamerec/internal/usecase/reload"
	searchuc "github.com/kailas-cloud/gamerec/internal/usecase/search"
	"github.com/kailas-cloud/gamerec/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, "gamerec", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gamerec API server",
		zap.String("version", version.Get().Version),
		zap.String("commit", version.Get().Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
		zap.String("snapshot_dir", cfg.Snapshot.Dir),
	)

	ctx := context.Background()

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRecommendMetrics()
	metrics.RegisterHTTPMetrics()

	// Optional embedding cache. Keep a nil interface (not a typed nil pointer) when disabled.
	var cache db.Store
	if cfg.Cache.Enabled() {
		store, err := openCache(ctx, cfg.Cache)
		if err != nil {
			logger.Fatal("Cache not available", zap.Error(err))
		}
		defer store.Close()
		cache = store
		logger.Info("Connected to cache")
	}

	provName, vecCfg, provCfg, err := activeVectorizer(&cfg)
	if err != nil {
		logger.Fatal("Invalid embedding config", zap.Error(err))
	}

	var kv db.KVStore
	if cache != nil {
		kv = cache
	}
	queryEmbedder := embedchain.Build(embedchain.Options{
		ProviderName: provName,
		Provider:     provCfg,
		Vectorizer:   vecCfg,
		Instruction:  vecCfg.QueryInstruction,
		Cache:        kv,
		CacheTTL:     time.Duration(cfg.Cache.TTLSec) * time.Second,
		Logger:       logger,
	})
	logger.Info("Embedder created",
		zap.String("provider", provName),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
	)

	// Snapshot: published once at startup, swapped on reload
	holder := snapshot.NewHolder()
	reloadSvc := reloaduc.New(snapstore.New(cfg.Snapshot.Dir), holder, logger,
		reloaduc.WithDimension(vecCfg.Dimensions))
	if m, err := reloadSvc.Reload(ctx); err != nil {
		// Serve /health and /metrics anyway; recommendations answer 503 until a reload succeeds.
		logger.Error("Initial snapshot load failed", zap.Error(err))
	} else {
		logger.Info("Snapshot loaded",
			zap.String("version", m.Version),
			zap.Int("items", m.Count),
			zap.Int("dimension", m.Dimension),
		)
	}

	// Use case services
	searchSvc := searchuc.New(queryEmbedder, time.Duration(cfg.Embedding.TimeoutMs)*time.Millisecond, logger)
	recSvc := recommenduc.New(holder, searchSvc, logger)

	var cachePinger health.CachePinger
	if cache != nil {
		cachePinger = cache
	}
	healthSvc := health.New(cachePinger, embedchain.NewHealthChecker(queryEmbedder), holder)

	var adminReload *reloaduc.Service
	if cfg.Snapshot.ReloadEndpoint {
		adminReload = reloadSvc
	}

	// Create chi server
	server := chiTransport.NewServer(recSvc, adminReload, healthSvc, chiTransport.Defaults{
		Alpha:        cfg.Recommend.DefaultAlpha,
		TopN:         cfg.Recommend.DefaultTopN,
		SemanticTopK: cfg.Recommend.SemanticTopK,
		MaxTopN:      cfg.Recommend.MaxTopN,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorResponseCodeBadRequest,
				Message: err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// SIGHUP reloads the snapshot from disk
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			logger.Info("Received SIGHUP, reloading snapshot")
			if _, err := reloadSvc.Reload(ctx); err != nil {
				logger.Error("Snapshot reload failed", zap.Error(err))
			}
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	signal.Stop(hup)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openCache connects to Redis or Valkey; both speak RESP and share one client.
func openCache(ctx context.Context, c config.CacheConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:          c.Addrs,
		Username:       c.Username,
		Password:       c.Password,
		DB:             c.DB,
		Standalone:     c.Standalone,
		ClientCacheTTL: time.Duration(c.ClientCacheTTLSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", c.Driver, err)
	}
	if err := store.WaitForReady(ctx, time.Duration(c.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", c.Driver, err)
	}
	return store, nil
}

func activeVectorizer(cfg *config.Config) (string, config.VectorizerConfig, config.ProviderConfig, error) {
	_, vec, prov, err := cfg.ActiveVectorizer()
	if err != nil {
		return "", config.VectorizerConfig{}, config.ProviderConfig{}, fmt.Errorf("active vectorizer: %w", err)
	}
	return vec.Provider, vec, prov, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
