package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harshas66/smart-grocery-assistant/internal/cache"
	"github.com/Harshas66/smart-grocery-assistant/internal/config"
	"github.com/Harshas66/smart-grocery-assistant/internal/handlers"
	"github.com/Harshas66/smart-grocery-assistant/internal/httpserver"
	"github.com/Harshas66/smart-grocery-assistant/internal/metrics"
	"github.com/Harshas66/smart-grocery-assistant/internal/offline"
	"github.com/Harshas66/smart-grocery-assistant/internal/provider"
	"github.com/Harshas66/smart-grocery-assistant/internal/recommend"
	"github.com/Harshas66/smart-grocery-assistant/pkg/logging/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("pantryd exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", zap.Error(err))
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Server.Port),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("provider_base_url", cfg.Provider.BaseURL),
		zap.Int("provider_keys", len(cfg.Provider.Keys)),
		zap.Bool("offline_mode", cfg.Provider.OfflineMode),
		zap.String("artifacts_dir", cfg.Recommend.ArtifactsDir),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.Cache.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.Cache.RedisAddr),
		)
	}

	// ----- Result cache -----
	store := cache.NewStore(cache.Config{
		Backend: cfg.Cache.Backend,
		Path:    cfg.Cache.Path,
		Prefix:  cfg.Cache.Prefix,
	}, redisClient, logger)
	store = cache.NewLoggingStore(store)

	// ----- Offline catalog -----
	catalog := offline.NewCatalog(cfg.Offline.DatasetPath, cfg.Offline.DetailsDir, logger)

	// ----- Provider client -----
	providerClient, err := provider.NewClient(provider.Config{
		BaseURL:         cfg.Provider.BaseURL,
		CDNBaseURL:      cfg.Provider.CDNBaseURL,
		Keys:            cfg.Provider.Keys,
		UpstreamTimeout: cfg.Provider.UpstreamTimeout,
		ListTTL:         cfg.Provider.ListTTL,
		Offline:         cfg.Provider.OfflineMode,
	}, store, catalog, logger)
	if err != nil {
		logger.Error("provider client init failed", zap.Error(err))
		return err
	}
	defer providerClient.Close()

	// ----- Recommender -----
	recommender := recommend.NewRecommender(cfg.Recommend.ArtifactsDir, logger)

	// ----- Handlers -----
	recipeHandler := handlers.NewRecipeHandler(
		providerClient,
		recommender,
		cfg.Recommend.CorpusPath,
		cfg.Recommend.ArtifactsDir,
	)

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, recipeHandler, httpserver.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting pantryd",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
